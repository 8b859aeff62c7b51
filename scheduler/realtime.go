package scheduler

import "time"

// RealTime is a stateless, zero-configuration Scheduler: it needs no
// background goroutine and no Close. It is the default mono.Mono and
// flux.Flux attach when a chain never calls .On(sched) explicitly, so a
// pipeline with a timeout or retry operator still works without forcing
// every caller to stand up a Cooperative or ParallelPool first. Unlike
// Immediate it does not block the caller for non-zero delays; unlike
// Cooperative/ParallelPool it gives no fairness or concurrency-bound
// guarantees, since it has no shared queue to apply them to.
type RealTime struct{}

// Schedule runs task after delay using the runtime's own timer goroutines.
func (RealTime) Schedule(task func(), delay time.Duration) *CancellationHandle {
	h := newHandle(nil)
	if delay <= 0 {
		go func() {
			if !h.Cancelled() {
				task()
			}
		}()
		return h
	}

	var timer *time.Timer
	h.onCancel = func() {
		if timer != nil {
			timer.Stop()
		}
	}
	timer = time.AfterFunc(delay, func() {
		if !h.Cancelled() {
			task()
		}
	})
	return h
}
