package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

var (
	LogPath      = "./logs/"
	AppLog       = "arbitrage"
	TransportLog = "transport"
	DispatchLog  = "dispatch"
	StatsLog     = "stats"
	NetworkLog   = "network"
)

const (
	JupModeFree  = "FREE"
	JupModeUltra = "ULTRA"
)

const (
	JupEndpointFree  = "https://lite-api.jup.ag"
	JupEndpointUltra = "https://api.jup.ag/ultra"
)

const (
	ModeBoth     = "both"
	ModeBuyOnly  = "buy-only"
	ModeSellOnly = "sell-only"
)

const (
	JitoModeOff     = "off"
	JitoModeRelayer = "relayer"
)

type Config struct {
	JupMode             string   `json:"jup_mode"`
	JupApiKey           string   `json:"jup_api_key"`
	RpcUrl              string   `json:"rpc_url"`
	PrivateKey          string   `json:"private_key"`
	DryRun              bool     `json:"dry_run"`
	UsdcMint            string   `json:"usdc_mint"`
	UsdcDecimals        int      `json:"usdc_decimals"`
	BuyAmountUsdc       float64  `json:"buy_amount_usdc"`
	MinNetProfitUsdc    float64  `json:"min_net_profit_usdc"`
	NearMissUsdc        float64  `json:"near_miss_usdc"`
	SlippageBps         int      `json:"slippage_bps"`
	IncludeDexes        []string `json:"include_dexes"`
	IncludeMode         string   `json:"include_mode"`
	ExcludeDexes        []string `json:"exclude_dexes"`
	FeeBpsBuy           int64    `json:"fee_bps_buy"`
	FeeBpsSell          int64    `json:"fee_bps_sell"`
	PriorityLamports    uint64   `json:"priority_lamports"`
	JitoTipLamports     uint64   `json:"jito_tip_lamports"`
	SolPriceUsd         float64  `json:"sol_price_usd"`
	ScanIntervalMs      int      `json:"scan_interval_ms"`
	PerTokenCooldownMs  int      `json:"per_token_cooldown_ms"`
	MaxParallel         int      `json:"max_parallel"`
	HttpTimeoutMs       int      `json:"http_timeout_ms"`
	FetchRetries        int      `json:"fetch_retries"`
	RetryBackoffMs      int      `json:"retry_backoff_ms"`
	Mode                string   `json:"mode"`
	MemesFile           string   `json:"memes_file"`
	JitoMode            string   `json:"jito_mode"`
	JitoBlockEngineHttp string   `json:"jito_block_engine_http"`
	JitoAuthUuid        string   `json:"jito_auth_uuid"`
	JitoTipAccount      string   `json:"jito_tip_account"`
	JitoTipSolBuy       float64  `json:"jito_tip_sol_buy"`
	JitoTipSolSell      float64  `json:"jito_tip_sol_sell"`
	SenderEndpoint      string   `json:"sender_endpoint"`
	SenderApiKey        string   `json:"sender_api_key"`
	SenderSkipPreflight bool     `json:"sender_skip_preflight"`
	SenderMaxRetries    int      `json:"sender_max_retries"`
	SenderCommitment    string   `json:"sender_commitment"`
	BroadcastMaxRetries uint     `json:"broadcast_max_retries"`
	ConfirmAttempts     int      `json:"confirm_attempts"`
	NetStatus           bool     `json:"net_status"`
	DingUrl             string   `json:"ding_url"`
	DBUrl               string   `json:"db_url"`
	DBScheme            string   `json:"db_scheme"`
	DBUser              string   `json:"db_user"`
	DBPasswd            string   `json:"db_passwd"`
	Listen              string   `json:"listen"`
}

func Default() *Config {
	return &Config{
		JupMode:             JupModeFree,
		UsdcMint:            "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		UsdcDecimals:        6,
		DryRun:              true,
		BuyAmountUsdc:       50,
		MinNetProfitUsdc:    0.5,
		NearMissUsdc:        0.1,
		SlippageBps:         50,
		IncludeMode:         "all",
		FeeBpsBuy:           10,
		FeeBpsSell:          10,
		PriorityLamports:    10000,
		JitoTipLamports:     2000,
		SolPriceUsd:         150,
		ScanIntervalMs:      250,
		MaxParallel:         4,
		HttpTimeoutMs:       15000,
		FetchRetries:        5,
		RetryBackoffMs:      500,
		Mode:                ModeBoth,
		MemesFile:           "./memes.txt",
		JitoMode:            JitoModeOff,
		JitoTipSolBuy:       0.006,
		JitoTipSolSell:      0.008,
		SenderSkipPreflight: true,
		SenderCommitment:    "confirmed",
		BroadcastMaxRetries: 3,
		ConfirmAttempts:     30,
	}
}

// Load reads the JSON config file over the defaults and then overlays the
// secrets that are usually kept out of the file.
func Load(file string) (*Config, error) {
	cfg := Default()
	infoJson, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(infoJson, cfg); err != nil {
		return nil, err
	}
	cfg.OverlayEnv()
	return cfg, nil
}

func (cfg *Config) OverlayEnv() {
	overlay := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	overlay(&cfg.RpcUrl, "RPC_URL")
	overlay(&cfg.PrivateKey, "PRIVATE_KEY_B58")
	overlay(&cfg.JupApiKey, "JUP_API_KEY")
	overlay(&cfg.SenderApiKey, "SENDER_API_KEY")
	overlay(&cfg.JitoAuthUuid, "JITO_AUTH_UUID")
	overlay(&cfg.JitoTipAccount, "JITO_TIP_ACCOUNT")
	overlay(&cfg.DingUrl, "DING_URL")
	overlay(&cfg.DBPasswd, "DB_PASSWD")
}

func (cfg *Config) JupBase() string {
	if strings.EqualFold(cfg.JupMode, JupModeUltra) {
		return JupEndpointUltra
	}
	return JupEndpointFree
}

func (cfg *Config) Validate() error {
	if cfg.RpcUrl == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if !cfg.DryRun && cfg.PrivateKey == "" {
		return fmt.Errorf("private_key is empty but dry_run is false")
	}
	if cfg.BuyAmountUsdc <= 0 {
		return fmt.Errorf("buy_amount_usdc must be positive")
	}
	if cfg.UsdcDecimals <= 0 {
		return fmt.Errorf("usdc_decimals must be positive")
	}
	if cfg.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be at least 1")
	}
	if cfg.FetchRetries < 1 {
		return fmt.Errorf("fetch_retries must be at least 1")
	}
	switch cfg.Mode {
	case ModeBoth, ModeBuyOnly, ModeSellOnly:
	default:
		return fmt.Errorf("mode %q is not supported", cfg.Mode)
	}
	if cfg.MemesFile == "" {
		return fmt.Errorf("memes_file is required")
	}
	return nil
}

// ReadMints loads the newline delimited token list. An unreadable or empty
// list is fatal at startup.
func ReadMints(file string) ([]string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("memes file: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	mints := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		mints = append(mints, line)
	}
	if len(mints) == 0 {
		return nil, fmt.Errorf("memes file %s has no tokens", file)
	}
	return mints, nil
}
