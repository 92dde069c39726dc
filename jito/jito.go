// Package jito talks to the block engine: tip account discovery and bundle
// submission over JSON-RPC.
package jito

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"

	"meme-arbitrage/transport"
)

var regionalBases = []string{
	"https://frankfurt.mainnet.block-engine.jito.wtf",
	"https://dublin.mainnet.block-engine.jito.wtf",
	"https://amsterdam.mainnet.block-engine.jito.wtf",
	"https://newyork.mainnet.block-engine.jito.wtf",
	"https://tokyo.mainnet.block-engine.jito.wtf",
}

const defaultBase = "https://mainnet.block-engine.jito.wtf"

// The engine has answered to both method spellings over time.
var tipAccountMethods = []string{"getTipAccounts", "get_tip_accounts"}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Id      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type Client struct {
	http       *transport.Client
	rpc        *rpc.Client
	bases      []string
	authUuid   string
	tipAccount string
	logger     *log.Logger
}

func NewClient(httpClient *transport.Client, rpcClient *rpc.Client, blockEngineHttp, authUuid, tipAccountOverride string, logger *log.Logger) *Client {
	base := strings.TrimRight(blockEngineHttp, "/")
	if base == "" {
		base = defaultBase
	}
	bases := append([]string{base}, regionalBases...)
	return &Client{
		http:       httpClient,
		rpc:        rpcClient,
		bases:      bases,
		authUuid:   authUuid,
		tipAccount: strings.TrimSpace(tipAccountOverride),
		logger:     logger,
	}
}

func (c *Client) TipAccount() string {
	return c.tipAccount
}

// Ready reports whether the bundle path can be used for submissions.
func (c *Client) Ready() bool {
	return c.tipAccount != ""
}

// ResolveTipAccount discovers a tip account unless one was configured. Every
// base and method spelling is tried; the first non-empty answer wins and a
// random account from it is kept.
func (c *Client) ResolveTipAccount(ctx context.Context) error {
	if c.tipAccount != "" {
		c.logger.Printf("jito tip account (configured): %s", c.tipAccount)
		return nil
	}
	for _, base := range c.bases {
		for _, method := range tipAccountMethods {
			accounts, err := c.tipAccounts(ctx, base, method)
			if err != nil {
				c.logger.Printf("jito %s %s err: %v", base, method, err)
				continue
			}
			if len(accounts) == 0 {
				continue
			}
			c.tipAccount = accounts[rand.Intn(len(accounts))]
			c.logger.Printf("jito tip account: %s", c.tipAccount)
			return nil
		}
	}
	return fmt.Errorf("could not fetch tip accounts from any block engine endpoint")
}

func (c *Client) tipAccounts(ctx context.Context, base, method string) ([]string, error) {
	var response rpcResponse
	if err := c.call(ctx, base, method, []interface{}{}, &response); err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("code: %d, err: %s", response.Error.Code, response.Error.Message)
	}
	// The result has been both a bare array and {tipAccounts: [...]}.
	var accounts []string
	if err := json.Unmarshal(response.Result, &accounts); err == nil {
		return accounts, nil
	}
	var wrapped struct {
		TipAccounts []string `json:"tipAccounts"`
	}
	if err := json.Unmarshal(response.Result, &wrapped); err == nil {
		return wrapped.TipAccounts, nil
	}
	return nil, nil
}

func (c *Client) call(ctx context.Context, base, method string, params []interface{}, out *rpcResponse) error {
	request := &rpcRequest{
		Jsonrpc: "2.0",
		Id:      time.Now().UnixMilli(),
		Method:  method,
		Params:  params,
	}
	var headers map[string]string
	if c.authUuid != "" {
		headers = map[string]string{"x-jito-auth": c.authUuid}
	}
	return c.http.PostHeaders(ctx, base+"/api/v1/bundles", request, out, headers)
}

// BuildTipTransaction builds and signs the tip payment that rides with the
// swap in a bundle.
func (c *Client) BuildTipTransaction(ctx context.Context, payer solana.PrivateKey, tipLamports uint64) (*solana.Transaction, error) {
	if c.tipAccount == "" {
		return nil, fmt.Errorf("tip account is not resolved")
	}
	tipKey, err := solana.PublicKeyFromBase58(c.tipAccount)
	if err != nil {
		return nil, fmt.Errorf("tip account %s: %w", c.tipAccount, err)
	}
	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, err
	}
	pub := payer.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(tipLamports, pub, tipKey).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(pub),
	)
	if err != nil {
		return nil, err
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// SendBundle submits the signed transactions as one atomic bundle and
// returns the bundle id.
func (c *Client) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return "", err
		}
		encoded = append(encoded, base58.Encode(raw))
	}
	var response rpcResponse
	if err := c.call(ctx, c.bases[0], "sendBundle", []interface{}{encoded}, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("sendBundle: code: %d, err: %s", response.Error.Code, response.Error.Message)
	}
	var bundleId string
	if err := json.Unmarshal(response.Result, &bundleId); err != nil {
		return "", fmt.Errorf("sendBundle result: %w", err)
	}
	return bundleId, nil
}
