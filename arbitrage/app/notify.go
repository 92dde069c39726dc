package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"meme-arbitrage/dingsdk"
	"meme-arbitrage/utils"
)

type OpportunityAlert struct {
	Id        uint64
	Mint      string
	Net       string
	BuyRoute  string
	SellRoute string
	// Set on the post-execution alert.
	Leg       string
	Transport string
	Signature string
}

type Notify struct {
	ctx  context.Context
	wg   sync.WaitGroup
	data chan *OpportunityAlert
	dsdk *dingsdk.DingSdk
}

func NewNotify(ctx context.Context, dsdk *dingsdk.DingSdk) *Notify {
	n := &Notify{
		ctx:  ctx,
		dsdk: dsdk,
		data: make(chan *OpportunityAlert, 32),
	}
	return n
}

func (notify *Notify) Start() {
	notify.wg.Add(1)
	go notify.listen()
}

func (notify *Notify) Commit(data *OpportunityAlert) {
	select {
	case notify.data <- data:
	default:
	}
}

func (notify *Notify) listen() {
	defer notify.wg.Done()
	for {
		select {
		case data := <-notify.data:
			notify.tryNotify(data)
		case <-notify.ctx.Done():
			return
		}
	}
}

func (notify *Notify) tryNotify(data *OpportunityAlert) {
	tt := int64(data.Id)
	ttStr := time.Unix(tt/1000000, 0).Format("2006-01-02 15:04:05")
	items := make([]string, 0)
	if data.Signature != "" {
		items = append(items, "leg executed: ")
		items = append(items, fmt.Sprintf("token: %s;", utils.ShortMint(data.Mint)))
		items = append(items, fmt.Sprintf("leg: %s via %s;", data.Leg, data.Transport))
		items = append(items, fmt.Sprintf("signature: %s;", data.Signature))
	} else {
		items = append(items, "round trip candidate: ")
		items = append(items, fmt.Sprintf("token: %s;", utils.ShortMint(data.Mint)))
		items = append(items, fmt.Sprintf("net: %s usdc;", data.Net))
		items = append(items, fmt.Sprintf("route: %s -> %s;", data.BuyRoute, data.SellRoute))
	}
	items = append(items, fmt.Sprintf("time: %s;", ttStr))
	text := strings.Join(items, "\n")
	dingNotify := &dingsdk.DingNotify{
		MsgType: "text",
		Text: dingsdk.DingContent{
			Content: text,
		},
		At: dingsdk.DingAt{
			IsAtAll: false,
		},
	}
	notify.dsdk.Notify(dingNotify)
}
