package dingsdk

import (
	"context"
	"fmt"
	"time"

	"meme-arbitrage/transport"
)

type DingContent struct {
	Content string `json:"content"`
}
type DingAt struct {
	IsAtAll bool `json:"isAtAll"`
}
type DingNotify struct {
	MsgType string      `json:"msgtype"`
	Text    DingContent `json:"text"`
	At      DingAt      `json:"at"`
}

type DingResult struct {
	ErrCode int64  `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type DingSdk struct {
	url  string
	http *transport.Client
}

func NewDingSdk(url string, http *transport.Client) *DingSdk {
	sdk := &DingSdk{
		url:  url,
		http: http,
	}
	return sdk
}

func (sdk *DingSdk) Notify(notify *DingNotify) (*DingResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dingResult := new(DingResult)
	err := sdk.http.Post(ctx, sdk.url, notify, dingResult)
	if err != nil {
		return nil, err
	}
	if dingResult.ErrCode != 0 || dingResult.ErrMsg != "ok" {
		return nil, fmt.Errorf("code: %d, err: %s", dingResult.ErrCode, dingResult.ErrMsg)
	}
	return dingResult, nil
}
