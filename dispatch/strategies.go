package dispatch

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"meme-arbitrage/jito"
	"meme-arbitrage/transport"
)

// BundleStrategy submits the swap together with a tip payment as an atomic
// block engine bundle.
type BundleStrategy struct {
	jito    *jito.Client
	wallet  *Wallet
	tipBuy  uint64
	tipSell uint64
	logger  *log.Logger
}

func NewBundleStrategy(jitoClient *jito.Client, wallet *Wallet, tipSolBuy, tipSolSell float64, logger *log.Logger) *BundleStrategy {
	return &BundleStrategy{
		jito:    jitoClient,
		wallet:  wallet,
		tipBuy:  uint64(tipSolBuy * 1e9),
		tipSell: uint64(tipSolSell * 1e9),
		logger:  logger,
	}
}

func (s *BundleStrategy) Name() string {
	return TransportBundle
}

func (s *BundleStrategy) Submit(ctx context.Context, leg string, swapB64 string) (string, error) {
	if !s.jito.Ready() {
		return "", fmt.Errorf("bundle path is not ready")
	}
	trx, err := s.wallet.SignedTransaction(swapB64)
	if err != nil {
		return "", err
	}
	tip := s.tipBuy
	if leg == LegSell {
		tip = s.tipSell
	}
	tipTrx, err := s.jito.BuildTipTransaction(ctx, s.wallet.PrivateKey(), tip)
	if err != nil {
		return "", err
	}
	bundleId, err := s.jito.SendBundle(ctx, []*solana.Transaction{trx, tipTrx})
	if err != nil {
		return "", err
	}
	return bundleId, nil
}

// SenderStrategy submits through an accelerated sendTransaction relay.
type SenderStrategy struct {
	endpoint      string
	apiKey        string
	http          *transport.Client
	rpc           *rpc.Client
	wallet        *Wallet
	skipPreflight bool
	maxRetries    int
	commitment    string
	confirm       *confirmer
}

func NewSenderStrategy(endpoint, apiKey string, httpClient *transport.Client, rpcClient *rpc.Client, wallet *Wallet, skipPreflight bool, maxRetries int, commitment string, confirmAttempts int) *SenderStrategy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &SenderStrategy{
		endpoint:      endpoint,
		apiKey:        apiKey,
		http:          httpClient,
		rpc:           rpcClient,
		wallet:        wallet,
		skipPreflight: skipPreflight,
		maxRetries:    maxRetries,
		commitment:    commitment,
		confirm:       newConfirmer(rpcClient, commitment, confirmAttempts),
	}
}

func (s *SenderStrategy) Name() string {
	return TransportSender
}

type senderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type senderResponse struct {
	Result string       `json:"result"`
	Error  *senderError `json:"error"`
}

func (s *SenderStrategy) Submit(ctx context.Context, leg string, swapB64 string) (string, error) {
	if s.endpoint == "" {
		return "", fmt.Errorf("sender endpoint is empty")
	}
	trx, err := s.wallet.SignedTransaction(swapB64)
	if err != nil {
		return "", err
	}
	serialized, err := trx.MarshalBinary()
	if err != nil {
		return "", err
	}
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      time.Now().UnixMilli(),
		"method":  "sendTransaction",
		"params": []interface{}{
			base64.StdEncoding.EncodeToString(serialized),
			map[string]interface{}{
				"encoding":      "base64",
				"skipPreflight": s.skipPreflight,
				"maxRetries":    s.maxRetries,
			},
		},
	}
	var headers map[string]string
	if s.apiKey != "" {
		headers = map[string]string{"x-api-key": s.apiKey}
	}
	var response senderResponse
	if err := s.http.PostHeaders(ctx, s.endpoint, body, &response, headers); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("sender: code: %d, err: %s", response.Error.Code, response.Error.Message)
	}
	signature := trx.Signatures[0].String()
	if err := s.confirm.wait(ctx, trx.Signatures[0]); err != nil {
		return "", fmt.Errorf("sender confirmation: %w", err)
	}
	return signature, nil
}

// BroadcastStrategy is the final fallback: plain sendTransaction against the
// network RPC entrypoint.
type BroadcastStrategy struct {
	rpc        *rpc.Client
	wallet     *Wallet
	maxRetries uint
	confirm    *confirmer
}

func NewBroadcastStrategy(rpcClient *rpc.Client, wallet *Wallet, maxRetries uint, commitment string, confirmAttempts int) *BroadcastStrategy {
	return &BroadcastStrategy{
		rpc:        rpcClient,
		wallet:     wallet,
		maxRetries: maxRetries,
		confirm:    newConfirmer(rpcClient, commitment, confirmAttempts),
	}
}

func (s *BroadcastStrategy) Name() string {
	return TransportBroadcast
}

func (s *BroadcastStrategy) Submit(ctx context.Context, leg string, swapB64 string) (string, error) {
	trx, err := s.wallet.SignedTransaction(swapB64)
	if err != nil {
		return "", err
	}
	maxRetries := s.maxRetries
	signature, err := s.rpc.SendTransactionWithOpts(ctx, trx, rpc.TransactionOpts{
		SkipPreflight:       false,
		MaxRetries:          &maxRetries,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", err
	}
	if err := s.confirm.wait(ctx, signature); err != nil {
		return "", fmt.Errorf("broadcast confirmation: %w", err)
	}
	return signature.String(), nil
}

// confirmer polls signature status until the acknowledgment level is
// reached. Level "none" means fire and forget.
type confirmer struct {
	rpc        *rpc.Client
	commitment rpc.ConfirmationStatusType
	attempts   int
	delay      time.Duration
}

func newConfirmer(rpcClient *rpc.Client, commitment string, attempts int) *confirmer {
	c := &confirmer{
		rpc:      rpcClient,
		attempts: attempts,
		delay:    500 * time.Millisecond,
	}
	switch commitment {
	case "processed":
		c.commitment = rpc.ConfirmationStatusProcessed
	case "confirmed":
		c.commitment = rpc.ConfirmationStatusConfirmed
	case "finalized":
		c.commitment = rpc.ConfirmationStatusFinalized
	case "none", "":
		c.attempts = 0
	default:
		c.commitment = rpc.ConfirmationStatusConfirmed
	}
	return c
}

var statusRank = map[rpc.ConfirmationStatusType]int{
	rpc.ConfirmationStatusProcessed: 1,
	rpc.ConfirmationStatusConfirmed: 2,
	rpc.ConfirmationStatusFinalized: 3,
}

func (c *confirmer) wait(ctx context.Context, signature solana.Signature) error {
	if c.attempts <= 0 {
		return nil
	}
	for attempt := 0; attempt < c.attempts; attempt++ {
		response, err := c.rpc.GetSignatureStatuses(ctx, true, signature)
		if err == nil && len(response.Value) > 0 && response.Value[0] != nil {
			status := response.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed: %v", status.Err)
			}
			if statusRank[status.ConfirmationStatus] >= statusRank[c.commitment] {
				return nil
			}
		}
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("signature %s not %s after %d checks", signature, c.commitment, c.attempts)
}
