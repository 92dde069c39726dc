package networkdetect

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"meme-arbitrage/config"
	"meme-arbitrage/dingsdk"
	"meme-arbitrage/utils"

	"github.com/go-ping/ping"
)

// NetworkDetector pings the quote endpoint host and raises an alert when the
// rolling average latency stays above the threshold.
type NetworkDetector struct {
	peer   string
	rtt    []int64
	avg    []int64
	pinger *ping.Pinger
	logger *log.Logger
	dsdk   *dingsdk.DingSdk
}

func NewNetworkDetector(endpoint string, dsdk *dingsdk.DingSdk) *NetworkDetector {
	logger := utils.NewLog(config.LogPath, config.NetworkLog)
	nd := &NetworkDetector{
		peer:   hostOf(endpoint),
		rtt:    make([]int64, 0),
		logger: logger,
		dsdk:   dsdk,
	}
	return nd
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err == nil && u.Host != "" {
		host := u.Host
		if index := strings.LastIndex(host, ":"); index != -1 {
			host = host[:index]
		}
		return host
	}
	return endpoint
}

func (nd *NetworkDetector) ping() {
	pinger, err := ping.NewPinger(nd.peer)
	if err != nil {
		nd.logger.Printf("pinger init: %v", err)
		return
	}
	nd.pinger = pinger
	notifyTime := time.Now().Unix()
	pinger.OnRecv = func(pkt *ping.Packet) {
		nd.rtt = append(nd.rtt, pkt.Rtt.Nanoseconds())
		sum := int64(0)
		for _, x := range nd.rtt {
			sum += x
		}
		avg := sum / int64(len(nd.rtt))
		nd.avg = append(nd.avg, avg)
		if len(nd.rtt) > 300 {
			nd.rtt = nd.rtt[len(nd.rtt)-300:]
		}
		if len(nd.avg) > 300 {
			nd.avg = nd.avg[len(nd.avg)-300:]
		}
		isLow := false
		for _, avgx := range nd.avg {
			if avgx < 100*1000*1000 {
				isLow = true
			}
		}
		now := time.Now().Unix()
		nd.logger.Printf("ping rtt: %d ms", avg/1000000)
		if !isLow {
			nd.logger.Printf("quote endpoint latency is too large")
			if now-notifyTime > 5*60 {
				nd.notify(nd.avg[len(nd.avg)-1])
				notifyTime = now
			}
		}
	}
	pinger.Run()
}

func (nd *NetworkDetector) notify(rtt int64) {
	if nd.dsdk == nil {
		return
	}
	ttStr := time.Now().Format("2006-01-02 15:04:05")
	dingNotify := &dingsdk.DingNotify{
		MsgType: "text",
		Text: dingsdk.DingContent{
			Content: fmt.Sprintf("scanner network rtt: %d ms;\ntime: %s;",
				rtt/1000000, ttStr),
		},
		At: dingsdk.DingAt{
			IsAtAll: false,
		},
	}
	nd.dsdk.Notify(dingNotify)
}

func (nd *NetworkDetector) Start() {
	go nd.ping()
}

func (nd *NetworkDetector) Stop() {
	if nd.pinger != nil {
		nd.pinger.Stop()
	}
}
