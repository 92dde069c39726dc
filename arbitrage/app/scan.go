package app

import (
	"sync"
	"time"

	"golang.org/x/net/context"
)

// Scan drives the cadence. A batch fans every token out through the limiter,
// then the loop sleeps for whatever is left of the interval.
func (a *App) Scan() {
	defer a.wg.Done()
	for {
		begin := time.Now()
		a.scanOnce()
		if !sleepCtx(a.ctx, nextDelay(a.scanInterval, time.Since(begin))) {
			return
		}
	}
}

func (a *App) scanOnce() {
	var wg sync.WaitGroup
	for _, mint := range a.mints {
		mint := mint
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.limiter.Run(func() {
				a.ProcessMint(mint)
			})
		}()
	}
	wg.Wait()
}

func nextDelay(interval, elapsed time.Duration) time.Duration {
	delay := interval - elapsed
	if delay < 0 {
		delay = 0
	}
	return delay
}

func sleepCtx(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
