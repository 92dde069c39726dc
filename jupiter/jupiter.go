// Package jupiter is the client for the swap aggregator: price quotes,
// unsigned swap transactions and the venue labels a quote routed through.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"meme-arbitrage/transport"
)

var ErrInvalidQuote = errors.New("invalid quote")

type SwapInfo struct {
	Label    string `json:"label"`
	AmmLabel string `json:"ammLabel"`
}

type RoutePlanStep struct {
	Label    string    `json:"label"`
	AmmLabel string    `json:"ammLabel"`
	SwapInfo *SwapInfo `json:"swapInfo"`
}

type MarketInfo struct {
	Label    string `json:"label"`
	AmmLabel string `json:"ammLabel"`
}

type Route struct {
	MarketInfos []MarketInfo `json:"marketInfos"`
}

// Quote is one priced swap. OutAmount stays a raw integer string until the
// profit model divides it. The raw body is retained because the swap build
// call wants the quote passed back untouched.
type Quote struct {
	OutAmount   string          `json:"outAmount"`
	InputMint   string          `json:"inputMint"`
	OutputMint  string          `json:"outputMint"`
	RoutePlan   []RoutePlanStep `json:"routePlan"`
	MarketInfos []MarketInfo    `json:"marketInfos"`
	Routes      []Route         `json:"routes"`

	raw json.RawMessage
}

func (q *Quote) Raw() json.RawMessage {
	return q.raw
}

type Client struct {
	http             *transport.Client
	base             string
	priorityLamports uint64
}

// NewClient wires the aggregator base URL. priorityLamports is the caller's
// total priority budget (base priority + relay tip), passed to the swap
// build call as a prioritization hint.
func NewClient(httpClient *transport.Client, base string, priorityLamports uint64) *Client {
	return &Client{
		http:             httpClient,
		base:             base,
		priorityLamports: priorityLamports,
	}
}

// Quote prices amount of inputMint into outputMint. amount is the raw
// integer amount in the input mint's smallest unit.
func (c *Client) Quote(ctx context.Context, inputMint, outputMint, amount string, slippageBps int) (*Quote, error) {
	query := url.Values{}
	query.Set("inputMint", inputMint)
	query.Set("outputMint", outputMint)
	query.Set("amount", amount)
	query.Set("slippageBps", strconv.Itoa(slippageBps))
	var body json.RawMessage
	if err := c.http.Get(ctx, c.base+"/swap/v1/quote", query, &body); err != nil {
		return nil, err
	}
	return ParseQuote(body)
}

// ParseQuote tolerates the wrapper shapes the quote endpoint has used over
// time: {data:[...]}, {quote:{...}} and the bare quote object.
func ParseQuote(body []byte) (*Quote, error) {
	raw := json.RawMessage(body)
	var wrapper struct {
		Data  []json.RawMessage `json:"data"`
		Quote json.RawMessage   `json:"quote"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil {
		if len(wrapper.Data) > 0 {
			raw = wrapper.Data[0]
		} else if len(wrapper.Quote) > 0 && !bytes.Equal(wrapper.Quote, []byte("null")) {
			raw = wrapper.Quote
		}
	}
	quote := &Quote{}
	if err := json.Unmarshal(raw, quote); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}
	if !validAmount(quote.OutAmount) {
		return nil, fmt.Errorf("%w: missing outAmount", ErrInvalidQuote)
	}
	quote.raw = raw
	return quote, nil
}

func validAmount(amount string) bool {
	if amount == "" {
		return false
	}
	for _, r := range amount {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type swapRequest struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	AsLegacyTransaction       bool            `json:"asLegacyTransaction"`
	DynamicSlippage           bool            `json:"dynamicSlippage"`
	PrioritizationFeeLamports uint64          `json:"prioritizationFeeLamports"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
	Error           string `json:"error"`
}

// BuildSwapTx asks the aggregator for an unsigned transaction for a quote
// previously obtained, returned base64 encoded.
func (c *Client) BuildSwapTx(ctx context.Context, quote *Quote, ownerPublicKey string) (string, error) {
	request := &swapRequest{
		QuoteResponse:             quote.Raw(),
		UserPublicKey:             ownerPublicKey,
		WrapAndUnwrapSol:          true,
		AsLegacyTransaction:       false,
		DynamicSlippage:           false,
		PrioritizationFeeLamports: c.priorityLamports,
	}
	var response swapResponse
	if err := c.http.Post(ctx, c.base+"/swap/v1/transactions", request, &response); err != nil {
		return "", err
	}
	if response.SwapTransaction == "" {
		if response.Error != "" {
			return "", fmt.Errorf("swap transaction not provided: %s", response.Error)
		}
		return "", fmt.Errorf("swap transaction not provided")
	}
	return response.SwapTransaction, nil
}

// ExtractDexLabels walks whatever hop representation the quote used and
// collects the venue labels. Extraction is best-effort telemetry: an
// unrecognized shape yields an empty list, never an error.
func ExtractDexLabels(quote *Quote) []string {
	if quote == nil {
		return nil
	}
	seen := make(map[string]bool)
	labels := make([]string, 0, 4)
	add := func(label string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		labels = append(labels, label)
	}
	hops := quote.RoutePlan
	if len(hops) == 0 {
		for _, info := range quote.MarketInfos {
			add(info.Label)
			add(info.AmmLabel)
		}
	}
	for _, hop := range hops {
		if hop.SwapInfo != nil {
			add(hop.SwapInfo.Label)
			add(hop.SwapInfo.AmmLabel)
		}
		add(hop.Label)
		add(hop.AmmLabel)
	}
	for _, route := range quote.Routes {
		for _, info := range route.MarketInfos {
			add(info.Label)
			add(info.AmmLabel)
		}
	}
	return labels
}
