// Package stats accumulates pipeline outcomes over a rolling one minute
// window. Many pipeline goroutines write concurrently; every update runs
// under one lock so a snapshot never observes a half applied outcome.
package stats

import (
	"context"
	"log"
	"math"
	"sync"
	"time"
)

const (
	tickInterval = time.Second
	windowLength = 60 * time.Second
)

type Snapshot struct {
	WindowStart     time.Time
	Spreads         int
	Candidates      int
	Executed        int
	NearMisses      int
	Errors          int
	BestNet         float64
	NetSum          float64
	CandidateNetSum float64
}

func (s Snapshot) AvgNet() float64 {
	if s.Spreads == 0 {
		return 0
	}
	return s.NetSum / float64(s.Spreads)
}

func (s Snapshot) AvgCandidateNet() float64 {
	if s.Candidates == 0 {
		return 0
	}
	return s.CandidateNetSum / float64(s.Candidates)
}

type Aggregator struct {
	mu              sync.Mutex
	windowStart     time.Time
	spreads         int
	candidates      int
	executed        int
	nearMisses      int
	errors          int
	bestNet         float64
	netSum          float64
	candidateNetSum float64

	window time.Duration
	now    func() time.Time
	emit   func(Snapshot)
	logger *log.Logger
}

func NewAggregator(logger *log.Logger) *Aggregator {
	a := &Aggregator{
		window:  windowLength,
		now:     time.Now,
		logger:  logger,
		bestNet: math.Inf(-1),
	}
	a.windowStart = a.now()
	a.emit = a.print
	return a
}

// RecordOutcome registers one evaluated spread.
func (a *Aggregator) RecordOutcome(net float64, candidate, nearMiss bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spreads++
	a.netSum += net
	if net > a.bestNet {
		a.bestNet = net
	}
	if candidate {
		a.candidates++
		a.candidateNetSum += net
	}
	if nearMiss {
		a.nearMisses++
	}
}

func (a *Aggregator) RecordExecution() {
	a.mu.Lock()
	a.executed++
	a.mu.Unlock()
}

func (a *Aggregator) RecordError() {
	a.mu.Lock()
	a.errors++
	a.mu.Unlock()
}

func (a *Aggregator) Current() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	return Snapshot{
		WindowStart:     a.windowStart,
		Spreads:         a.spreads,
		Candidates:      a.candidates,
		Executed:        a.executed,
		NearMisses:      a.nearMisses,
		Errors:          a.errors,
		BestNet:         a.bestNet,
		NetSum:          a.netSum,
		CandidateNetSum: a.candidateNetSum,
	}
}

// Tick emits and resets the window when a full window has elapsed since the
// last emission. The scheduler calls it every second.
func (a *Aggregator) Tick() {
	a.mu.Lock()
	now := a.now()
	if now.Sub(a.windowStart) < a.window {
		a.mu.Unlock()
		return
	}
	snapshot := a.snapshotLocked()
	a.windowStart = now
	a.spreads = 0
	a.candidates = 0
	a.executed = 0
	a.nearMisses = 0
	a.errors = 0
	a.bestNet = math.Inf(-1)
	a.netSum = 0
	a.candidateNetSum = 0
	a.mu.Unlock()
	a.emit(snapshot)
}

func (a *Aggregator) print(s Snapshot) {
	best := s.BestNet
	if math.IsInf(best, -1) {
		best = 0
	}
	a.logger.Printf("snapshot(1m): spreads=%d | candidates=%d | executed=%d | bestNet=%.4f | avgNet=%.4f | avgCandidateNet=%.4f | nearMiss=%d | errors=%d",
		s.Spreads, s.Candidates, s.Executed, best, s.AvgNet(), s.AvgCandidateNet(), s.NearMisses, s.Errors)
}

// Run drives Tick on a one second cadence until the context is done.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.Tick()
		case <-ctx.Done():
			return
		}
	}
}
