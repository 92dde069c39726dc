package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"meme-arbitrage/config"
	"meme-arbitrage/dexes"
	"meme-arbitrage/dingsdk"
	"meme-arbitrage/dispatch"
	"meme-arbitrage/jito"
	"meme-arbitrage/jupiter"
	"meme-arbitrage/limiter"
	"meme-arbitrage/networkdetect"
	"meme-arbitrage/profit"
	"meme-arbitrage/stats"
	"meme-arbitrage/store"
	"meme-arbitrage/transport"
	"meme-arbitrage/utils"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Quoter is the slice of the aggregator client the scanner needs.
type Quoter interface {
	Quote(ctx context.Context, inputMint, outputMint, amount string, slippageBps int) (*jupiter.Quote, error)
	BuildSwapTx(ctx context.Context, quote *jupiter.Quote, ownerPublicKey string) (string, error)
}

// Submitter delivers a signed swap through the configured paths.
type Submitter interface {
	Dispatch(ctx context.Context, leg string, swapB64 string) (*dispatch.Result, error)
}

// Simulator dry-runs a swap transaction against the rpc node.
type Simulator interface {
	Simulate(ctx context.Context, swapB64 string) (*dispatch.Simulation, error)
}

type App struct {
	ctx          context.Context
	log          *log.Logger
	config       *config.Config
	wg           sync.WaitGroup
	mints        []string
	wallet       *dispatch.Wallet
	quoter       Quoter
	submitter    Submitter
	simulator    Simulator
	jito         *jito.Client
	policy       *dexes.Policy
	model        *profit.Model
	stats        *stats.Aggregator
	limiter      *limiter.Limiter
	store        *store.Store
	notify       *Notify
	nd           *networkdetect.NetworkDetector
	httpServer   *http.Server
	rpcPort      string
	buyAmount    decimal.Decimal
	buyAmountRaw string
	cooldown     time.Duration
	scanInterval time.Duration
}

func NewApp(ctx context.Context, cfg *config.Config) *App {
	a := &App{
		ctx:          ctx,
		config:       cfg,
		rpcPort:      cfg.Listen,
		cooldown:     time.Duration(cfg.PerTokenCooldownMs) * time.Millisecond,
		scanInterval: time.Duration(cfg.ScanIntervalMs) * time.Millisecond,
	}
	a.log = utils.NewLog(config.LogPath, config.AppLog)
	//
	mints, err := config.ReadMints(cfg.MemesFile)
	if err != nil {
		panic(err)
	}
	a.mints = mints
	//
	httpClient := transport.NewClient(
		time.Duration(cfg.HttpTimeoutMs)*time.Millisecond,
		cfg.FetchRetries,
		time.Duration(cfg.RetryBackoffMs)*time.Millisecond,
		cfg.JupApiKey,
		utils.NewLog(config.LogPath, config.TransportLog))
	a.quoter = jupiter.NewClient(httpClient, cfg.JupBase(), cfg.PriorityLamports)
	//
	if cfg.PrivateKey != "" {
		wallet, err := dispatch.NewWallet(cfg.PrivateKey)
		if err != nil {
			panic(err)
		}
		a.wallet = wallet
	} else {
		a.wallet = dispatch.GenerateWallet()
	}
	//
	rpcClient := rpc.New(cfg.RpcUrl)
	dispatchLog := utils.NewLog(config.LogPath, config.DispatchLog)
	strategies := make([]dispatch.Strategy, 0, 3)
	if cfg.JitoMode == config.JitoModeRelayer {
		a.jito = jito.NewClient(httpClient, rpcClient, cfg.JitoBlockEngineHttp,
			cfg.JitoAuthUuid, cfg.JitoTipAccount, dispatchLog)
		strategies = append(strategies, dispatch.NewBundleStrategy(
			a.jito, a.wallet, cfg.JitoTipSolBuy, cfg.JitoTipSolSell, dispatchLog))
	}
	if cfg.SenderEndpoint != "" {
		strategies = append(strategies, dispatch.NewSenderStrategy(
			cfg.SenderEndpoint, cfg.SenderApiKey, httpClient, rpcClient, a.wallet,
			cfg.SenderSkipPreflight, cfg.SenderMaxRetries, cfg.SenderCommitment,
			cfg.ConfirmAttempts))
	}
	strategies = append(strategies, dispatch.NewBroadcastStrategy(
		rpcClient, a.wallet, cfg.BroadcastMaxRetries, cfg.SenderCommitment,
		cfg.ConfirmAttempts))
	a.submitter = dispatch.NewDispatcher(dispatchLog, strategies...)
	a.simulator = dispatch.NewSimulator(rpcClient, a.wallet)
	//
	a.policy = dexes.NewPolicy(cfg.IncludeDexes, cfg.IncludeMode, cfg.ExcludeDexes)
	model, err := profit.NewModel(cfg.UsdcDecimals, cfg.FeeBpsBuy, cfg.FeeBpsSell,
		cfg.PriorityLamports, cfg.JitoTipLamports, cfg.SolPriceUsd)
	if err != nil {
		panic(err)
	}
	a.model = model
	a.buyAmount = decimal.NewFromFloat(cfg.BuyAmountUsdc)
	a.buyAmountRaw = a.buyAmount.Shift(int32(cfg.UsdcDecimals)).Truncate(0).String()
	//
	a.stats = stats.NewAggregator(utils.NewLog(config.LogPath, config.StatsLog))
	a.limiter = limiter.New(cfg.MaxParallel)
	//
	if cfg.DBUrl != "" {
		a.store = store.NewStore(ctx, cfg.DBUrl, cfg.DBScheme, cfg.DBUser, cfg.DBPasswd)
	}
	if cfg.DingUrl != "" {
		dsdk := dingsdk.NewDingSdk(cfg.DingUrl, httpClient)
		a.notify = NewNotify(ctx, dsdk)
		if cfg.NetStatus {
			a.nd = networkdetect.NewNetworkDetector(cfg.JupBase(), dsdk)
		}
	}
	return a
}

func (a *App) Service() {
	a.Start()
	if a.rpcPort != "" {
		a.StartRPC()
	}
	<-a.ctx.Done()
	if a.rpcPort != "" {
		a.StopRPC()
	}
	a.Stop()
}

func (a *App) Start() {
	if a.nd != nil {
		a.nd.Start()
	}
	if a.store != nil {
		a.store.Start()
	}
	if a.notify != nil {
		a.notify.Start()
	}
	if a.jito != nil {
		if err := a.jito.ResolveTipAccount(a.ctx); err != nil {
			a.log.Printf("jito tip account resolve err: %v", err)
		}
	}
	go a.stats.Run(a.ctx)
	a.wg.Add(1)
	go a.Scan()
	a.log.Printf("scanner has started, %d tokens, buy %s usdc, min net %v, mode %s, interval %s, parallel %d, dry run: %v......",
		len(a.mints), a.buyAmount.String(), a.config.MinNetProfitUsdc, a.config.Mode,
		a.scanInterval, a.config.MaxParallel, a.config.DryRun)
}

func (a *App) Stop() {
	if a.nd != nil {
		a.nd.Stop()
	}
	a.wg.Wait()
	if a.store != nil {
		a.store.Stop()
	}
	a.log.Printf("scanner has stopped......")
}

func (a *App) StartRPC() {
	router := gin.New()
	g := router.Group("/api")
	g.GET("/stats", a.getStats)
	g.GET("/opportunity", a.getOpportunity)
	a.httpServer = &http.Server{
		Addr:    a.rpcPort,
		Handler: router,
	}
	a.log.Printf("start rpc server......")
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil {
			a.log.Printf("ListenAndServe: %s", err.Error())
		}
	}()
}

func (a *App) StopRPC() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		panic(err)
	}
	a.log.Printf("rpc server has stopped......")
}

// cooldownSleep pauses at the end of a completed evaluation pass. It runs
// inside the limiter slot, so a configured cooldown also throttles how fast
// slots recycle.
func (a *App) cooldownSleep() {
	if a.cooldown > 0 {
		sleepCtx(a.ctx, a.cooldown)
	}
}

func routeLine(labels []string) string {
	if len(labels) == 0 {
		return "-"
	}
	line := labels[0]
	for _, label := range labels[1:] {
		line = fmt.Sprintf("%s,%s", line, label)
	}
	return line
}
