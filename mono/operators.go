package mono

import (
	"context"
	"time"

	"github.com/jonwraymond/reactorcore/corerr"
	"github.com/jonwraymond/reactorcore/event"
	"github.com/jonwraymond/reactorcore/internal/backoff"
	"github.com/jonwraymond/reactorcore/result"
	"github.com/jonwraymond/reactorcore/scheduler"
)

// Map transforms a present value, free-standing because Go methods cannot
// introduce a new type parameter (mirrors result.Map).
func Map[T, U any](m Mono[T], f func(T) U) Mono[U] {
	return Mono[U]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[U], error] {
		r := m.source(ctx, sched)
		return result.Map(r, func(mb Maybe[T]) Maybe[U] {
			if !mb.Present {
				return None[U]()
			}
			return Some(f(mb.Value))
		})
	}}
}

// Bind (a.k.a. flat_map) subscribes to f(value) once the upstream completes
// with a value, flattening the result. Empty and Failure propagate untouched.
func Bind[T, U any](m Mono[T], f func(T) Mono[U]) Mono[U] {
	return Mono[U]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[U], error] {
		r := m.source(ctx, sched)
		if r.IsFailure() {
			return result.Failure[Maybe[U], error](r.UnwrapErr())
		}
		mb := r.Unwrap()
		if !mb.Present {
			return result.Success[Maybe[U], error](None[U]())
		}
		return f(mb.Value).source(ctx, sched)
	}}
}

// Filter turns a present value that fails pred into empty.
func (m Mono[T]) Filter(pred func(T) bool) Mono[T] {
	return Mono[T]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		r := m.source(ctx, sched)
		return result.Map(r, func(mb Maybe[T]) Maybe[T] {
			if mb.Present && !pred(mb.Value) {
				return None[T]()
			}
			return mb
		})
	}}
}

// MapError transforms a Failure's error, leaving value/empty unchanged.
func (m Mono[T]) MapError(f func(error) error) Mono[T] {
	return Mono[T]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		return result.MapError(m.source(ctx, sched), f)
	}}
}

// Recover substitutes a fallback Mono when the upstream fails.
func (m Mono[T]) Recover(f func(error) Mono[T]) Mono[T] {
	return Mono[T]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		r := m.source(ctx, sched)
		if r.IsSuccess() {
			return r
		}
		return f(r.UnwrapErr()).source(ctx, sched)
	}}
}

// RecoverWith substitutes def when the upstream fails.
func (m Mono[T]) RecoverWith(def T) Mono[T] {
	return m.Recover(func(error) Mono[T] { return Just(def) })
}

// Inspect runs fn for its side effect on a present value, without changing
// the signal.
func (m Mono[T]) Inspect(fn func(T)) Mono[T] {
	return Mono[T]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		r := m.source(ctx, sched)
		if r.IsSuccess() {
			if mb := r.Unwrap(); mb.Present {
				fn(mb.Value)
			}
		}
		return r
	}}
}

// Timeout fails with a TimeoutError if the upstream hasn't produced a
// terminal signal within d. The deadline is armed through the attached
// Scheduler (or RealTime by default) rather than time.After directly, so
// the race is driven by the same abstraction operators elsewhere use.
func (m Mono[T]) Timeout(d time.Duration) Mono[T] {
	return Mono[T]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		resultCh := make(chan result.Result[Maybe[T], error], 1)
		go func() { resultCh <- m.source(cctx, sched) }()

		deadlineCh := make(chan struct{}, 1)
		handle := sched.Schedule(func() { deadlineCh <- struct{}{} }, d)

		select {
		case r := <-resultCh:
			handle.Cancel()
			return r
		case <-deadlineCh:
			cancel()
			return result.Failure[Maybe[T], error](corerr.NewTimeout("mono.Timeout"))
		case <-ctx.Done():
			handle.Cancel()
			cancel()
			return result.Failure[Maybe[T], error](ctx.Err())
		}
	}}
}

// Retry resubscribes up to maxAttempts times (counting the first attempt)
// while the upstream fails, waiting between attempts per policy. It returns
// the last Failure if every attempt fails, or the first Success. listener
// (nil is fine) observes each scheduled retry via event.RetryAttempted,
// before the inter-attempt delay is armed.
func (m Mono[T]) Retry(maxAttempts int, policy backoff.Policy, listener event.Listener) Mono[T] {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if listener == nil {
		listener = event.Nop
	}
	return Mono[T]{scheduler: m.scheduler, source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		var last result.Result[Maybe[T], error]
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return result.Failure[Maybe[T], error](err)
			}
			last = m.source(ctx, sched)
			if last.IsSuccess() || attempt == maxAttempts {
				return last
			}
			d := policy.Delay(attempt)
			listener(event.Event{
				Kind:      event.RetryAttempted,
				Timestamp: time.Now(),
				Attempt:   attempt,
				Delay:     d,
				Err:       last.UnwrapErr(),
			})
			if d > 0 {
				done := make(chan struct{}, 1)
				h := sched.Schedule(func() { done <- struct{}{} }, d)
				select {
				case <-done:
				case <-ctx.Done():
					h.Cancel()
					return result.Failure[Maybe[T], error](ctx.Err())
				}
			}
		}
		return last
	}}
}
