// Package scheduler abstracts over where and when a continuation runs
// (spec §4.2). Mono and Flux operators that suspend — from_callable,
// from_async_result, delay, timeout, retry backoff — go through a
// Scheduler rather than calling time.Sleep or go func() directly, so a
// subscription can be moved between an inline, single-threaded, or
// worker-pool runtime without the operator chain knowing which.
//
// Four implementations are provided:
//
//   - Immediate: runs the task synchronously on the calling goroutine.
//   - RealTime: stateless; runs each task on a runtime timer or goroutine.
//     It is the default for Mono and Flux chains that never call On.
//   - Cooperative: a single background goroutine draining a FIFO ready
//     queue, giving strict fairness among ready tasks.
//   - ParallelPool: a fixed set of worker goroutines draining a bounded
//     task channel, grounded on the teacher's resilience.Bulkhead
//     channel-semaphore idiom — bounded concurrency instead of an
//     unbounded goroutine-per-task fan-out.
package scheduler
