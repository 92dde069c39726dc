package stats

import (
	"log"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestAggregator(start time.Time) (*Aggregator, *time.Time, *[]Snapshot) {
	a := NewAggregator(log.New(os.Stderr, "", 0))
	clock := start
	a.now = func() time.Time { return clock }
	a.windowStart = start
	emitted := &[]Snapshot{}
	a.emit = func(s Snapshot) { *emitted = append(*emitted, s) }
	return a, &clock, emitted
}

func TestWindowEmitsAfterSixtySeconds(t *testing.T) {
	start := time.Unix(1700000000, 0)
	a, clock, emitted := newTestAggregator(start)

	a.RecordOutcome(0.25, true, false)
	a.RecordOutcome(-0.05, false, true)
	a.RecordOutcome(-0.5, false, false)
	a.RecordExecution()
	a.RecordError()

	*clock = start.Add(59 * time.Second)
	a.Tick()
	require.Empty(t, *emitted)

	*clock = start.Add(60 * time.Second)
	a.Tick()
	require.Len(t, *emitted, 1)

	s := (*emitted)[0]
	require.Equal(t, 3, s.Spreads)
	require.Equal(t, 1, s.Candidates)
	require.Equal(t, 1, s.Executed)
	require.Equal(t, 1, s.NearMisses)
	require.Equal(t, 1, s.Errors)
	require.InDelta(t, 0.25, s.BestNet, 1e-9)
	require.InDelta(t, -0.3, s.NetSum, 1e-9)
	require.InDelta(t, 0.25, s.CandidateNetSum, 1e-9)
	require.InDelta(t, -0.1, s.AvgNet(), 1e-9)
	require.InDelta(t, 0.25, s.AvgCandidateNet(), 1e-9)
}

func TestWindowResetsToIdentity(t *testing.T) {
	start := time.Unix(1700000000, 0)
	a, clock, emitted := newTestAggregator(start)

	a.RecordOutcome(1.5, true, false)
	*clock = start.Add(61 * time.Second)
	a.Tick()
	require.Len(t, *emitted, 1)

	current := a.Current()
	require.Zero(t, current.Spreads)
	require.Zero(t, current.Candidates)
	require.Zero(t, current.Executed)
	require.Zero(t, current.NearMisses)
	require.Zero(t, current.Errors)
	require.Zero(t, current.NetSum)
	require.Zero(t, current.CandidateNetSum)
	require.True(t, math.IsInf(current.BestNet, -1))
	require.Equal(t, start.Add(61*time.Second), current.WindowStart)

	// No second emission until another full window elapses.
	*clock = start.Add(90 * time.Second)
	a.Tick()
	require.Len(t, *emitted, 1)
	*clock = start.Add(121 * time.Second)
	a.Tick()
	require.Len(t, *emitted, 2)
}

func TestConcurrentRecording(t *testing.T) {
	a := NewAggregator(log.New(os.Stderr, "", 0))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.RecordOutcome(0.1, true, false)
			a.RecordExecution()
			a.RecordError()
		}()
	}
	wg.Wait()
	s := a.Current()
	require.Equal(t, 50, s.Spreads)
	require.Equal(t, 50, s.Candidates)
	require.Equal(t, 50, s.Executed)
	require.Equal(t, 50, s.Errors)
	require.InDelta(t, 5.0, s.NetSum, 1e-9)
}
