package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler schedules task to run after delay (delay=0 means "as soon as
// the scheduler's fairness model allows"). The returned handle lets the
// caller cancel before the task fires.
type Scheduler interface {
	Schedule(task func(), delay time.Duration) *CancellationHandle
}

// CancellationHandle is the token a Schedule call returns. Cancel is
// idempotent: calling it any number of times has the same observable effect
// as calling it once (spec §5).
type CancellationHandle struct {
	cancelled atomic.Bool
	once      sync.Once
	onCancel  func()
}

func newHandle(onCancel func()) *CancellationHandle {
	return &CancellationHandle{onCancel: onCancel}
}

// Cancel marks the handle cancelled and, if the task has not yet fired,
// prevents it from running.
func (h *CancellationHandle) Cancel() {
	h.cancelled.Store(true)
	if h.onCancel != nil {
		h.once.Do(h.onCancel)
	}
}

// Cancelled reports whether Cancel has been called.
func (h *CancellationHandle) Cancelled() bool {
	return h.cancelled.Load()
}
