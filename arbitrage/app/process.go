package app

import (
	"sync/atomic"
	"time"

	"meme-arbitrage/config"
	"meme-arbitrage/dexes"
	"meme-arbitrage/dispatch"
	"meme-arbitrage/jupiter"
	"meme-arbitrage/profit"
	"meme-arbitrage/store"
	"meme-arbitrage/utils"
)

// Opportunity ids are microsecond timestamps, but concurrent pipelines can
// evaluate within the same microsecond, so the sequence is forced strictly
// increasing to keep the primary key unique.
var lastOpportunityId uint64

func nextOpportunityId() uint64 {
	for {
		prev := atomic.LoadUint64(&lastOpportunityId)
		id := uint64(time.Now().UnixMicro())
		if id <= prev {
			id = prev + 1
		}
		if atomic.CompareAndSwapUint64(&lastOpportunityId, prev, id) {
			return id
		}
	}
}

// ProcessMint runs one round trip check for a single token. A panic inside
// one token must not take down the batch.
func (a *App) ProcessMint(mint string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Printf("process %s panic: %v", utils.ShortMint(mint), r)
			a.stats.RecordError()
		}
	}()
	buyQuote, err := a.quoter.Quote(a.ctx, a.config.UsdcMint, mint, a.buyAmountRaw, a.config.SlippageBps)
	if err != nil {
		a.stats.RecordError()
		a.log.Printf("buy quote %s err: %v", utils.ShortMint(mint), err)
		return
	}
	buyRoute := dexes.NormalizeSet(jupiter.ExtractDexLabels(buyQuote))
	if !a.policy.Allows(buyRoute) {
		return
	}
	sellQuote, err := a.quoter.Quote(a.ctx, mint, a.config.UsdcMint, buyQuote.OutAmount, a.config.SlippageBps)
	if err != nil {
		a.stats.RecordError()
		a.log.Printf("sell quote %s err: %v", utils.ShortMint(mint), err)
		return
	}
	sellRoute := dexes.NormalizeSet(jupiter.ExtractDexLabels(sellQuote))
	if !a.policy.Allows(sellRoute) {
		return
	}
	eval, err := a.model.Evaluate(a.buyAmount, sellQuote.OutAmount)
	if err != nil {
		a.stats.RecordError()
		a.log.Printf("evaluate %s err: %v", utils.ShortMint(mint), err)
		return
	}
	net, _ := eval.Net.Float64()
	candidate := net >= a.config.MinNetProfitUsdc
	nearMiss := !candidate && a.config.MinNetProfitUsdc-net <= a.config.NearMissUsdc
	a.stats.RecordOutcome(net, candidate, nearMiss)
	id := nextOpportunityId()
	if a.store != nil {
		a.store.StoreOpportunity(&store.ObservedOpportunity{
			Id:        id,
			Mint:      mint,
			BuyAmount: a.buyAmount.String(),
			SellBack:  eval.Back.String(),
			Gross:     eval.Gross.String(),
			Fees:      eval.Fees.String(),
			Priority:  eval.PriorityCost.String(),
			Net:       eval.Net.String(),
			Candidate: candidate,
			BuyRoute:  routeLine(buyRoute),
			SellRoute: routeLine(sellRoute),
		})
	}
	if !candidate {
		if nearMiss {
			a.log.Printf("near miss %s, net: %s, route: %s -> %s",
				utils.ShortMint(mint), eval.Net.StringFixed(4),
				routeLine(buyRoute), routeLine(sellRoute))
		}
		a.cooldownSleep()
		return
	}
	a.log.Printf("candidate %s, net: %s, back: %s, route: %s -> %s",
		utils.ShortMint(mint), eval.Net.StringFixed(4), eval.Back.StringFixed(4),
		routeLine(buyRoute), routeLine(sellRoute))
	if a.notify != nil {
		a.notify.Commit(&OpportunityAlert{
			Id:        id,
			Mint:      mint,
			Net:       eval.Net.StringFixed(4),
			BuyRoute:  routeLine(buyRoute),
			SellRoute: routeLine(sellRoute),
		})
	}
	if a.config.DryRun {
		a.simulateLegs(mint, buyQuote, sellQuote)
	} else {
		a.execute(id, mint, buyQuote, sellQuote, eval)
	}
	a.cooldownSleep()
}

// execute submits the buy leg and then the sell leg. A failed leg aborts the
// remainder so the trip is never half submitted twice.
func (a *App) execute(id uint64, mint string, buyQuote, sellQuote *jupiter.Quote, eval *profit.Evaluation) {
	if a.config.Mode == config.ModeSellOnly {
		return
	}
	owner := a.wallet.PublicKey().String()
	if !a.executeLeg(id, mint, dispatch.LegBuy, buyQuote, owner) {
		return
	}
	if a.config.Mode != config.ModeBuyOnly {
		if !a.executeLeg(id, mint, dispatch.LegSell, sellQuote, owner) {
			return
		}
	}
	a.stats.RecordExecution()
	a.log.Printf("executed %s, net: %s", utils.ShortMint(mint), eval.Net.StringFixed(4))
}

func (a *App) executeLeg(id uint64, mint, leg string, quote *jupiter.Quote, owner string) bool {
	swapTx, err := a.quoter.BuildSwapTx(a.ctx, quote, owner)
	if err != nil {
		a.stats.RecordError()
		a.log.Printf("%s swap build %s err: %v", leg, utils.ShortMint(mint), err)
		return false
	}
	sendTime := uint64(time.Now().UnixMicro())
	res, err := a.submitter.Dispatch(a.ctx, leg, swapTx)
	if err != nil {
		a.stats.RecordError()
		a.log.Printf("%s dispatch %s err: %v", leg, utils.ShortMint(mint), err)
		return false
	}
	a.log.Printf("%s leg %s sent via %s, signature: %s", leg, utils.ShortMint(mint),
		res.Transport, res.Signature)
	if a.store != nil {
		a.store.StoreExecutedLeg(&store.ExecutedLeg{
			Id:           id,
			Leg:          leg,
			Mint:         mint,
			Transport:    res.Transport,
			Signature:    res.Signature,
			SendTime:     sendTime,
			ResponseTime: uint64(time.Now().UnixMicro()),
		})
	}
	if a.notify != nil {
		a.notify.Commit(&OpportunityAlert{
			Id:        id,
			Mint:      mint,
			Leg:       leg,
			Transport: res.Transport,
			Signature: res.Signature,
		})
	}
	return true
}

// simulateLegs builds the legs the trade mode permits and replays them on
// the rpc node without submitting anything.
func (a *App) simulateLegs(mint string, buyQuote, sellQuote *jupiter.Quote) {
	if a.config.Mode == config.ModeSellOnly {
		return
	}
	owner := a.wallet.PublicKey().String()
	type legQuote struct {
		leg   string
		quote *jupiter.Quote
	}
	legs := []legQuote{{dispatch.LegBuy, buyQuote}}
	if a.config.Mode != config.ModeBuyOnly {
		legs = append(legs, legQuote{dispatch.LegSell, sellQuote})
	}
	for _, item := range legs {
		swapTx, err := a.quoter.BuildSwapTx(a.ctx, item.quote, owner)
		if err != nil {
			a.log.Printf("%s swap build %s err: %v", item.leg, utils.ShortMint(mint), err)
			return
		}
		sim, err := a.simulator.Simulate(a.ctx, swapTx)
		if err != nil {
			a.log.Printf("%s simulate %s err: %v", item.leg, utils.ShortMint(mint), err)
			return
		}
		if sim.Err != nil {
			a.log.Printf("%s simulate %s failed: %v", item.leg, utils.ShortMint(mint), sim.Err)
			return
		}
		a.log.Printf("%s simulate %s ok, units: %d", item.leg, utils.ShortMint(mint), sim.UnitsConsumed)
	}
}
