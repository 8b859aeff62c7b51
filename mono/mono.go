package mono

import (
	"context"

	"github.com/jonwraymond/reactorcore/result"
	"github.com/jonwraymond/reactorcore/scheduler"
)

// sourceFunc computes the terminal signal for one subscription. It must be
// safe to call more than once (each call is an independent subscription)
// and must respect ctx cancellation at any suspension point.
type sourceFunc[T any] func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error]

// Mono is a lazy, cold producer of at most one terminal signal. The zero
// value is not usable; build one with Just, Empty, Error, FromCallable, or
// Defer.
type Mono[T any] struct {
	source    sourceFunc[T]
	scheduler scheduler.Scheduler
}

// Just completes immediately with v.
func Just[T any](v T) Mono[T] {
	return Mono[T]{source: func(context.Context, scheduler.Scheduler) result.Result[Maybe[T], error] {
		return result.Success[Maybe[T], error](Some(v))
	}}
}

// Empty completes immediately with no value.
func Empty[T any]() Mono[T] {
	return Mono[T]{source: func(context.Context, scheduler.Scheduler) result.Result[Maybe[T], error] {
		return result.Success[Maybe[T], error](None[T]())
	}}
}

// Error completes immediately with err.
func Error[T any](err error) Mono[T] {
	return Mono[T]{source: func(context.Context, scheduler.Scheduler) result.Result[Maybe[T], error] {
		return result.Failure[Maybe[T], error](err)
	}}
}

// FromCallable defers fn until subscribed, catching any panic as a Failure
// (spec §4.1: no Mono operation ever raises past the subscriber).
func FromCallable[T any](fn func() (T, error)) Mono[T] {
	return Mono[T]{source: func(ctx context.Context, _ scheduler.Scheduler) result.Result[Maybe[T], error] {
		if err := ctx.Err(); err != nil {
			return result.Failure[Maybe[T], error](err)
		}
		r := result.CatchResult("mono.FromCallable", func() result.Result[T, error] {
			v, err := fn()
			if err != nil {
				return result.Failure[T, error](err)
			}
			return result.Success[T, error](v)
		})
		return result.Map(r, func(v T) Maybe[T] { return Some(v) })
	}}
}

// FromCallableCtx is FromCallable for callables that want to observe
// cancellation themselves (e.g. a Flux terminal operator folding items into
// one value while honoring the subscriber's ctx).
func FromCallableCtx[T any](fn func(ctx context.Context) (T, error)) Mono[T] {
	return Mono[T]{source: func(ctx context.Context, _ scheduler.Scheduler) result.Result[Maybe[T], error] {
		r := result.CatchResult("mono.FromCallableCtx", func() result.Result[T, error] {
			v, err := fn(ctx)
			if err != nil {
				return result.Failure[T, error](err)
			}
			return result.Success[T, error](v)
		})
		return result.Map(r, func(v T) Maybe[T] { return Some(v) })
	}}
}

// Defer calls supplier freshly for every subscription, so side effects in
// supplier run once per subscriber rather than once at construction time.
func Defer[T any](supplier func() Mono[T]) Mono[T] {
	return Mono[T]{source: func(ctx context.Context, sched scheduler.Scheduler) result.Result[Maybe[T], error] {
		return supplier().source(ctx, sched)
	}}
}

// FromAsyncResult bridges an existing result.AsyncResult into a Mono; the
// AsyncResult's own memoization means every subscription after the first
// observes the same cached outcome.
func FromAsyncResult[T any](ar *result.AsyncResult[T, error]) Mono[T] {
	return Mono[T]{source: func(ctx context.Context, _ scheduler.Scheduler) result.Result[Maybe[T], error] {
		r := ar.Await(ctx)
		return result.Map(r, func(v T) Maybe[T] { return Some(v) })
	}}
}

// On attaches sched, used by operators that suspend (Timeout, Retry).
// Chains that never call On fall back to scheduler.RealTime.
func (m Mono[T]) On(sched scheduler.Scheduler) Mono[T] {
	m.scheduler = sched
	return m
}

func (m Mono[T]) effectiveScheduler() scheduler.Scheduler {
	if m.scheduler != nil {
		return m.scheduler
	}
	return scheduler.RealTime{}
}

// Subscription is the stateful handle returned by Subscribe: its terminal
// Result is memoized via result.AsyncResult (singleflight under the hood),
// so concurrent Await calls on the same Subscription collapse into one run
// of the upstream chain (spec §3.2/§9).
type Subscription[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	ar     *result.AsyncResult[Maybe[T], error]
}

// Subscribe starts (lazily, on first Await) one run of the chain. Each call
// to Subscribe is an independent subscription and re-runs the source.
func (m Mono[T]) Subscribe(ctx context.Context) *Subscription[T] {
	cctx, cancel := context.WithCancel(ctx)
	sched := m.effectiveScheduler()
	src := m.source
	ar := result.NewAsyncResult(func(c context.Context) result.Result[Maybe[T], error] {
		return src(c, sched)
	})
	return &Subscription[T]{ctx: cctx, cancel: cancel, ar: ar}
}

// Await blocks until the subscription resolves or its context is done.
func (s *Subscription[T]) Await() result.Result[Maybe[T], error] {
	done := make(chan result.Result[Maybe[T], error], 1)
	go func() { done <- s.ar.Await(s.ctx) }()
	select {
	case r := <-done:
		return r
	case <-s.ctx.Done():
		return result.Failure[Maybe[T], error](s.ctx.Err())
	}
}

// Cancel aborts the subscription. Idempotent (context.CancelFunc already is).
func (s *Subscription[T]) Cancel() { s.cancel() }
