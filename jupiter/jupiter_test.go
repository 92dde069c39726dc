package jupiter

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meme-arbitrage/transport"
)

func newHTTP(t *testing.T) *transport.Client {
	t.Helper()
	logger := log.New(os.Stderr, "", log.LstdFlags)
	return transport.NewClient(time.Second, 1, time.Millisecond, "", logger)
}

func TestParseQuoteShapes(t *testing.T) {
	bare := []byte(`{"outAmount":"123","inputMint":"A","outputMint":"B"}`)
	wrapped := []byte(`{"data":[{"outAmount":"456"}]}`)
	keyed := []byte(`{"quote":{"outAmount":"789"}}`)

	q, err := ParseQuote(bare)
	require.NoError(t, err)
	require.Equal(t, "123", q.OutAmount)
	require.JSONEq(t, string(bare), string(q.Raw()))

	q, err = ParseQuote(wrapped)
	require.NoError(t, err)
	require.Equal(t, "456", q.OutAmount)

	q, err = ParseQuote(keyed)
	require.NoError(t, err)
	require.Equal(t, "789", q.OutAmount)
}

func TestParseQuoteRejectsMissingOutAmount(t *testing.T) {
	for _, body := range []string{
		`{"error":"no route"}`,
		`{"outAmount":""}`,
		`{"outAmount":"-5"}`,
		`{"outAmount":"12x"}`,
	} {
		_, err := ParseQuote([]byte(body))
		require.ErrorIs(t, err, ErrInvalidQuote, body)
	}
}

func TestQuoteRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/v1/quote", r.URL.Path)
		require.Equal(t, "usdc", r.URL.Query().Get("inputMint"))
		require.Equal(t, "meme", r.URL.Query().Get("outputMint"))
		require.Equal(t, "50000000", r.URL.Query().Get("amount"))
		require.Equal(t, "50", r.URL.Query().Get("slippageBps"))
		w.Write([]byte(`{"outAmount":"321","routePlan":[{"swapInfo":{"label":"Whirlpool"}}]}`))
	}))
	defer server.Close()

	client := NewClient(newHTTP(t), server.URL, 12000)
	quote, err := client.Quote(context.Background(), "usdc", "meme", "50000000", 50)
	require.NoError(t, err)
	require.Equal(t, "321", quote.OutAmount)
	require.Equal(t, []string{"Whirlpool"}, ExtractDexLabels(quote))
}

func TestBuildSwapTxPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap/v1/transactions", r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		require.Equal(t, "owner", payload["userPublicKey"])
		require.Equal(t, true, payload["wrapAndUnwrapSol"])
		require.Equal(t, false, payload["asLegacyTransaction"])
		require.Equal(t, false, payload["dynamicSlippage"])
		require.EqualValues(t, 12000, payload["prioritizationFeeLamports"])
		quote, ok := payload["quoteResponse"].(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "321", quote["outAmount"])
		w.Write([]byte(`{"swapTransaction":"dGVzdA=="}`))
	}))
	defer server.Close()

	quote, err := ParseQuote([]byte(`{"outAmount":"321"}`))
	require.NoError(t, err)
	client := NewClient(newHTTP(t), server.URL, 12000)
	b64, err := client.BuildSwapTx(context.Background(), quote, "owner")
	require.NoError(t, err)
	require.Equal(t, "dGVzdA==", b64)
}

func TestBuildSwapTxMissingTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	quote, err := ParseQuote([]byte(`{"outAmount":"321"}`))
	require.NoError(t, err)
	client := NewClient(newHTTP(t), server.URL, 0)
	_, err = client.BuildSwapTx(context.Background(), quote, "owner")
	require.ErrorContains(t, err, "rate limited")
}

func TestExtractDexLabelsShapes(t *testing.T) {
	quote, err := ParseQuote([]byte(`{
		"outAmount":"1",
		"routePlan":[
			{"swapInfo":{"label":"Whirlpool","ammLabel":"Orca"}},
			{"label":"Raydium CLMM"}
		],
		"routes":[{"marketInfos":[{"label":"Meteora DLMM"}]}]
	}`))
	require.NoError(t, err)
	require.Equal(t, []string{"Whirlpool", "Orca", "Raydium CLMM", "Meteora DLMM"}, ExtractDexLabels(quote))

	quote, err = ParseQuote([]byte(`{"outAmount":"1","marketInfos":[{"ammLabel":"Lifinity V2"}]}`))
	require.NoError(t, err)
	require.Equal(t, []string{"Lifinity V2"}, ExtractDexLabels(quote))

	quote, err = ParseQuote([]byte(`{"outAmount":"1"}`))
	require.NoError(t, err)
	require.Empty(t, ExtractDexLabels(quote))
}
