package app

import (
	"time"

	"meme-arbitrage/store"

	"github.com/gin-gonic/gin"
)

type StatsView struct {
	Spreads         int     `json:"spreads"`
	Candidates      int     `json:"candidates"`
	Executed        int     `json:"executed"`
	NearMisses      int     `json:"near_misses"`
	Errors          int     `json:"errors"`
	BestNet         float64 `json:"best_net"`
	AvgNet          float64 `json:"avg_net"`
	AvgCandidateNet float64 `json:"avg_candidate_net"`
}

type OpportunityView struct {
	Id        uint64 `json:"id"`
	Time      string `json:"time"`
	Mint      string `json:"mint"`
	BuyAmount string `json:"buy_amount"`
	SellBack  string `json:"sell_back"`
	Net       string `json:"net"`
	Candidate bool   `json:"candidate"`
	BuyRoute  string `json:"buy_route"`
	SellRoute string `json:"sell_route"`
}

type ExecutedLegView struct {
	Id        uint64 `json:"id"`
	Leg       string `json:"leg"`
	Time      string `json:"time"`
	Transport string `json:"transport"`
	Signature string `json:"signature"`
}

func buildOpportunity(op *store.ObservedOpportunity) *OpportunityView {
	return &OpportunityView{
		Id:        op.Id,
		Time:      time.Unix(int64(op.Id)/1000000, int64(op.Id)%1000000*1000).Format("2006-01-02 15:04:05.000000"),
		Mint:      op.Mint,
		BuyAmount: op.BuyAmount,
		SellBack:  op.SellBack,
		Net:       op.Net,
		Candidate: op.Candidate,
		BuyRoute:  op.BuyRoute,
		SellRoute: op.SellRoute,
	}
}

func buildExecutedLeg(leg *store.ExecutedLeg) *ExecutedLegView {
	return &ExecutedLegView{
		Id:        leg.Id,
		Leg:       leg.Leg,
		Time:      time.Unix(int64(leg.SendTime)/1000000, int64(leg.SendTime)%1000000*1000).Format("2006-01-02 15:04:05.000000"),
		Transport: leg.Transport,
		Signature: leg.Signature,
	}
}

func (a *App) getStats(c *gin.Context) {
	s := a.stats.Current()
	view := &StatsView{
		Spreads:         s.Spreads,
		Candidates:      s.Candidates,
		Executed:        s.Executed,
		NearMisses:      s.NearMisses,
		Errors:          s.Errors,
		BestNet:         s.BestNet,
		AvgNet:          s.AvgNet(),
		AvgCandidateNet: s.AvgCandidateNet(),
	}
	c.JSON(200, view)
}

func (a *App) getOpportunity(c *gin.Context) {
	mint, ok := c.GetQuery("mint")
	if !ok {
		c.JSON(500, "parameter is invalid")
		return
	}
	if a.store == nil {
		c.JSON(500, "store is not configured")
		return
	}
	ops, err := a.store.GetOpportunities(mint, 50)
	if err != nil {
		c.JSON(500, err.Error())
		return
	}
	legs, err := a.store.GetExecutedLegs(mint, 50)
	if err != nil {
		c.JSON(500, err.Error())
		return
	}
	opViews := make([]*OpportunityView, 0, len(ops))
	for _, op := range ops {
		opViews = append(opViews, buildOpportunity(op))
	}
	legViews := make([]*ExecutedLegView, 0, len(legs))
	for _, leg := range legs {
		legViews = append(legViews, buildExecutedLeg(leg))
	}
	c.JSON(200, gin.H{
		"opportunities": opViews,
		"executed_legs": legViews,
	})
}
