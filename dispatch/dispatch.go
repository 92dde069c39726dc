// Package dispatch delivers a signed swap transaction through an ordered
// chain of transport paths: block engine bundle, accelerated sender relay,
// plain RPC broadcast. The first path that succeeds wins; chain exhaustion
// fails the leg.
package dispatch

import (
	"context"
	"errors"
	"log"
)

const (
	LegBuy  = "buy"
	LegSell = "sell"
)

const (
	TransportBundle    = "bundle"
	TransportSender    = "sender"
	TransportBroadcast = "broadcast"
)

var ErrAllPaths = errors.New("all delivery paths failed")

// Result is the delivery reference for one submitted leg.
type Result struct {
	Signature string
	Transport string
}

// Strategy is one delivery path. Submit signs locally and transmits,
// returning a signature or bundle id.
type Strategy interface {
	Name() string
	Submit(ctx context.Context, leg string, swapB64 string) (string, error)
}

type Dispatcher struct {
	strategies []Strategy
	logger     *log.Logger
}

func NewDispatcher(logger *log.Logger, strategies ...Strategy) *Dispatcher {
	return &Dispatcher{
		strategies: strategies,
		logger:     logger,
	}
}

// Dispatch walks the chain in order. A path error falls through to the next
// path rather than failing the leg.
func (d *Dispatcher) Dispatch(ctx context.Context, leg string, swapB64 string) (*Result, error) {
	for _, strategy := range d.strategies {
		reference, err := strategy.Submit(ctx, leg, swapB64)
		if err != nil {
			d.logger.Printf("%s leg via %s err: %v, falling through", leg, strategy.Name(), err)
			continue
		}
		return &Result{Signature: reference, Transport: strategy.Name()}, nil
	}
	return nil, ErrAllPaths
}
