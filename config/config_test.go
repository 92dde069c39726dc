package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	err := os.WriteFile(file, []byte(`{
		"rpc_url": "http://localhost:8899",
		"buy_amount_usdc": 25,
		"jup_mode": "ULTRA",
		"mode": "buy-only"
	}`), 0644)
	require.NoError(t, err)
	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8899", cfg.RpcUrl)
	require.Equal(t, 25.0, cfg.BuyAmountUsdc)
	require.Equal(t, JupEndpointUltra, cfg.JupBase())
	require.Equal(t, ModeBuyOnly, cfg.Mode)
	// untouched fields keep their defaults
	require.Equal(t, 6, cfg.UsdcDecimals)
	require.Equal(t, 250, cfg.ScanIntervalMs)
}

func TestOverlayEnvWinsOverFile(t *testing.T) {
	t.Setenv("RPC_URL", "http://env:8899")
	t.Setenv("JUP_API_KEY", "env-key")
	cfg := Default()
	cfg.RpcUrl = "http://file:8899"
	cfg.OverlayEnv()
	require.Equal(t, "http://env:8899", cfg.RpcUrl)
	require.Equal(t, "env-key", cfg.JupApiKey)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.RpcUrl = "http://localhost:8899"
		return cfg
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.RpcUrl = ""
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.DryRun = false
	require.Error(t, cfg.Validate())
	cfg.PrivateKey = "key"
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.BuyAmountUsdc = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Mode = "backwards"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.MaxParallel = 0
	require.Error(t, cfg.Validate())
}

func TestReadMints(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "memes.txt")
	err := os.WriteFile(file, []byte("mint-a\n\n  mint-b  \r\nmint-c\n"), 0644)
	require.NoError(t, err)
	mints, err := ReadMints(file)
	require.NoError(t, err)
	require.Equal(t, []string{"mint-a", "mint-b", "mint-c"}, mints)
}

func TestReadMintsMissingOrEmpty(t *testing.T) {
	_, err := ReadMints(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(file, []byte("\n\n"), 0644))
	_, err = ReadMints(file)
	require.Error(t, err)
}
