package limiter

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBoundNeverExceeded(t *testing.T) {
	l := New(2)
	var running, peak, done int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Run(func() {
				now := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				atomic.AddInt32(&done, 1)
			})
		}()
	}
	wg.Wait()
	require.EqualValues(t, 5, atomic.LoadInt32(&done))
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	require.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPanickingTaskDoesNotBlockQueue(t *testing.T) {
	l := New(1)
	var done int32
	var wg sync.WaitGroup

	run := func(task func()) {
		defer wg.Done()
		defer func() { recover() }()
		l.Run(task)
	}

	wg.Add(3)
	go run(func() { time.Sleep(5 * time.Millisecond); atomic.AddInt32(&done, 1) })
	time.Sleep(time.Millisecond)
	go run(func() { panic("boom") })
	time.Sleep(time.Millisecond)
	go run(func() { atomic.AddInt32(&done, 1) })

	wg.Wait()
	require.EqualValues(t, 2, atomic.LoadInt32(&done))
}

func TestFIFOAdmission(t *testing.T) {
	l := New(1)
	l.Acquire()

	order := make(chan int, 3)
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			l.Run(func() { order <- i })
		}()
		// Give each submission time to enter the wait queue in order.
		time.Sleep(5 * time.Millisecond)
	}

	l.Release()
	wg.Wait()
	close(order)
	got := make([]int, 0, 3)
	for i := range order {
		got = append(got, i)
	}
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestZeroLimitClampedToOne(t *testing.T) {
	l := New(0)
	ran := false
	l.Run(func() { ran = true })
	require.True(t, ran)
}
