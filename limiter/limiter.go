// Package limiter bounds how many pipeline invocations run at once. Excess
// submissions queue in FIFO order and are admitted strictly as capacity
// frees up; a finished task hands its slot straight to the head waiter.
package limiter

import (
	"sync"

	"github.com/badgerodon/collections/queue"
)

type Limiter struct {
	mu      sync.Mutex
	limit   int
	active  int
	waiters *queue.Queue
}

func New(limit int) *Limiter {
	if limit < 1 {
		limit = 1
	}
	return &Limiter{
		limit:   limit,
		waiters: queue.New(),
	}
}

func (l *Limiter) Acquire() {
	l.mu.Lock()
	if l.active < l.limit {
		l.active++
		l.mu.Unlock()
		return
	}
	admit := make(chan struct{})
	l.waiters.Enqueue(admit)
	l.mu.Unlock()
	<-admit
}

func (l *Limiter) Release() {
	l.mu.Lock()
	if l.waiters.Len() > 0 {
		admit := l.waiters.Dequeue().(chan struct{})
		l.mu.Unlock()
		close(admit)
		return
	}
	l.active--
	l.mu.Unlock()
}

// Run executes task within the concurrency bound. The slot is released
// whether the task returns normally or panics, so a failing task never
// blocks admission of the queue behind it.
func (l *Limiter) Run(task func()) {
	l.Acquire()
	defer l.Release()
	task()
}
