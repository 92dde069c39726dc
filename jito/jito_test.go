package jito

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

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"meme-arbitrage/transport"
)

func newTestClient(t *testing.T, serverURL, tipOverride string) *Client {
	t.Helper()
	logger := log.New(os.Stderr, "", log.LstdFlags)
	httpClient := transport.NewClient(time.Second, 1, time.Millisecond, "", logger)
	c := NewClient(httpClient, nil, serverURL, "auth-uuid", tipOverride, logger)
	c.bases = []string{serverURL}
	return c
}

func TestResolveTipAccountBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/bundles", r.URL.Path)
		require.Equal(t, "auth-uuid", r.Header.Get("x-jito-auth"))
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":["Tip1111111111111111111111111111111111111111"]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	require.NoError(t, c.ResolveTipAccount(context.Background()))
	require.Equal(t, "Tip1111111111111111111111111111111111111111", c.TipAccount())
	require.True(t, c.Ready())
}

func TestResolveTipAccountWrappedAndFallbackMethod(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &req))
		method := req["method"].(string)
		methods = append(methods, method)
		if method == "getTipAccounts" {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"tipAccounts":["TipWrapped111111111111111111111111111111111"]}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	require.NoError(t, c.ResolveTipAccount(context.Background()))
	require.Equal(t, "TipWrapped111111111111111111111111111111111", c.TipAccount())
	require.Equal(t, []string{"getTipAccounts", "get_tip_accounts"}, methods)
}

func TestResolveTipAccountOverrideSkipsNetwork(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", "TipConfigured1111111111111111111111111111111")
	require.NoError(t, c.ResolveTipAccount(context.Background()))
	require.Equal(t, "TipConfigured1111111111111111111111111111111", c.TipAccount())
}

func TestResolveTipAccountExhaustsEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	require.Error(t, c.ResolveTipAccount(context.Background()))
}

func TestSendBundleEncodesBase58(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Method string     `json:"method"`
			Params [][]string `json:"params"`
		}
		require.NoError(t, json.Unmarshal(raw, &req))
		require.Equal(t, "sendBundle", req.Method)
		require.Len(t, req.Params, 1)
		for _, tx := range req.Params[0] {
			_, err := base58.Decode(tx)
			require.NoError(t, err)
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"bundle-id-1"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	id, err := c.SendBundle(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "bundle-id-1", id)
}
