package scheduler

import (
	"sync"
	"time"
)

// Cooperative is a single-threaded event loop: one background goroutine
// drains a FIFO ready queue, so tasks that become ready run in strict
// arrival order with no two tasks ever running concurrently. Operators that
// need ordering across suspension points (e.g. a concat_map chain) should
// run on a Cooperative scheduler.
type Cooperative struct {
	ready     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewCooperative starts the loop goroutine and returns a handle to it.
// Callers must call Close when done to release the goroutine.
func NewCooperative() *Cooperative {
	c := &Cooperative{
		ready: make(chan func(), 256),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Cooperative) run() {
	for {
		select {
		case fn := <-c.ready:
			fn()
		case <-c.done:
			return
		}
	}
}

// Schedule enqueues task to run on the loop goroutine once delay elapses.
func (c *Cooperative) Schedule(task func(), delay time.Duration) *CancellationHandle {
	h := newHandle(nil)
	enqueue := func() {
		if h.Cancelled() {
			return
		}
		select {
		case c.ready <- task:
		case <-c.done:
		}
	}

	if delay <= 0 {
		enqueue()
		return h
	}

	var timer *time.Timer
	h.onCancel = func() {
		if timer != nil {
			timer.Stop()
		}
	}
	timer = time.AfterFunc(delay, enqueue)
	return h
}

// Close stops the loop goroutine. Idempotent.
func (c *Cooperative) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
