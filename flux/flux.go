package flux

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/reactorcore/event"
	"github.com/jonwraymond/reactorcore/scheduler"
)

// defaultIntervalBufferCapacity and defaultMergeBufferCapacity bound the
// overflowBuffer Interval and Merge decouple their hot producers through,
// when the caller uses the plain (non-WithOverflow) constructor.
const (
	defaultIntervalBufferCapacity = 64
	defaultMergeBufferCapacity    = 64
)

// emitFunc delivers one item downstream. Returning false tells the producer
// to stop emitting — used both by operators like Take(n) that only want a
// prefix, and internally when a downstream cancellation has landed.
type emitFunc[T any] func(v T) (cont bool)

// produceFunc drives a subscription to completion, calling emit for each
// item and returning nil on normal completion or the terminal error.
type produceFunc[T any] func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error

// Flux is a lazy, cold producer of zero or more values. The zero value is
// not usable; build one with FromIterable, Range, Empty, Error, or Defer.
type Flux[T any] struct {
	produce   produceFunc[T]
	scheduler scheduler.Scheduler
}

// On attaches sched, used by operators that suspend (Interval, Delay,
// Throttle, Retry, Parallel). Chains that never call On fall back to
// scheduler.RealTime.
func (f Flux[T]) On(sched scheduler.Scheduler) Flux[T] {
	f.scheduler = sched
	return f
}

func (f Flux[T]) effectiveScheduler() scheduler.Scheduler {
	if f.scheduler != nil {
		return f.scheduler
	}
	return scheduler.RealTime{}
}

// FromIterable emits each element of items in order, then completes.
func FromIterable[T any](items []T) Flux[T] {
	cp := append([]T(nil), items...)
	return Flux[T]{produce: func(ctx context.Context, _ scheduler.Scheduler, emit emitFunc[T]) error {
		for _, v := range cp {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !emit(v) {
				return nil
			}
		}
		return nil
	}}
}

// Range emits count consecutive ints starting at start.
func Range(start, count int) Flux[int] {
	if count <= 0 {
		return Empty[int]()
	}
	items := make([]int, count)
	for i := range items {
		items[i] = start + i
	}
	return FromIterable(items)
}

// Empty completes immediately with no items.
func Empty[T any]() Flux[T] {
	return Flux[T]{produce: func(context.Context, scheduler.Scheduler, emitFunc[T]) error { return nil }}
}

// Error completes immediately with err and no items.
func Error[T any](err error) Flux[T] {
	return Flux[T]{produce: func(context.Context, scheduler.Scheduler, emitFunc[T]) error { return err }}
}

// Defer calls supplier freshly for every subscription.
func Defer[T any](supplier func() Flux[T]) Flux[T] {
	return Flux[T]{produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		return supplier().produce(ctx, sched, emit)
	}}
}

// FromChannel emits everything received on ch until it closes or ctx ends —
// the idiomatic Go stand-in for an "async iterable" source.
func FromChannel[T any](ch <-chan T) Flux[T] {
	return Flux[T]{produce: func(ctx context.Context, _ scheduler.Scheduler, emit emitFunc[T]) error {
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if !emit(v) {
					return nil
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}}
}

// Interval emits increasing ints every d, forever, until cancelled or
// bounded downstream (e.g. by Take). Ticks fire on schedule regardless of
// how quickly the subscriber drains them; equivalent to
// IntervalWithOverflow(d, defaultIntervalBufferCapacity, OverflowError, nil).
func Interval(d time.Duration) Flux[int] {
	return IntervalWithOverflow(d, defaultIntervalBufferCapacity, OverflowError, nil)
}

// IntervalWithOverflow is Interval with an explicit bounded-buffer capacity,
// overflow strategy, and event.Listener (nil is fine). Ticks are produced by
// a background goroutine independent of the consume loop below, so a slow
// subscriber doesn't throttle the tick itself — instead items pile up in a
// bounded buffer and strategy decides what happens once it saturates.
func IntervalWithOverflow(d time.Duration, capacity int, strategy OverflowStrategy, listener event.Listener) Flux[int] {
	return Flux[int]{produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[int]) error {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		buf := newOverflowBuffer[int](capacity, strategy, listener, "flux.Interval")
		notify := make(chan struct{}, 1)
		errCh := make(chan error, 1)

		go func() {
			n := 0
			for {
				tickDone := make(chan struct{}, 1)
				h := sched.Schedule(func() { tickDone <- struct{}{} }, d)
				select {
				case <-tickDone:
					if err := buf.push(n); err != nil {
						select {
						case errCh <- err:
						case <-cctx.Done():
						}
						return
					}
					select {
					case notify <- struct{}{}:
					default:
					}
					n++
				case <-cctx.Done():
					h.Cancel()
					return
				}
			}
		}()

		for {
			select {
			case err := <-errCh:
				return err
			case <-notify:
				for _, v := range buf.drain() {
					if !emit(v) {
						return nil
					}
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}}
}

// Concat subscribes to each Flux in order, only moving to the next once
// the previous completes.
func Concat[T any](fluxes ...Flux[T]) Flux[T] {
	return Flux[T]{produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		for _, fx := range fluxes {
			stopped := false
			err := fx.produce(ctx, sched, func(v T) bool {
				if !emit(v) {
					stopped = true
					return false
				}
				return true
			})
			if err != nil {
				return err
			}
			if stopped {
				return nil
			}
		}
		return nil
	}}
}

// Merge subscribes to all fluxes concurrently, forwarding items in arrival
// order (interleaved, not round-robin) and completing once every source
// has completed or any one of them errors. Equivalent to
// MergeWithOverflow(defaultMergeBufferCapacity, OverflowError, nil, fluxes...).
func Merge[T any](fluxes ...Flux[T]) Flux[T] {
	return MergeWithOverflow(defaultMergeBufferCapacity, OverflowError, nil, fluxes...)
}

// MergeWithOverflow is Merge with an explicit bounded-buffer capacity,
// overflow strategy, and event.Listener (nil is fine). Each source pushes
// into one shared buffer rather than blocking on an unbuffered channel, so
// a subscriber that falls behind sees the configured overflow behavior
// instead of implicitly throttling every source to its own pace.
func MergeWithOverflow[T any](capacity int, strategy OverflowStrategy, listener event.Listener, fluxes ...Flux[T]) Flux[T] {
	return Flux[T]{produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		buf := newOverflowBuffer[T](capacity, strategy, listener, "flux.Merge")
		notify := make(chan struct{}, 1)
		errCh := make(chan error, len(fluxes)+1)
		doneCh := make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(len(fluxes))
		for _, fx := range fluxes {
			fx := fx
			go func() {
				defer wg.Done()
				err := fx.produce(cctx, sched, func(v T) bool {
					if perr := buf.push(v); perr != nil {
						select {
						case errCh <- perr:
						case <-cctx.Done():
						}
						return false
					}
					select {
					case notify <- struct{}{}:
					default:
					}
					return true
				})
				if err != nil {
					select {
					case errCh <- err:
					case <-cctx.Done():
					}
				}
			}()
		}
		go func() { wg.Wait(); close(doneCh) }()

		drainInto := func() (stopped bool) {
			for _, v := range buf.drain() {
				if !emit(v) {
					return true
				}
			}
			return false
		}

		for {
			select {
			case err := <-errCh:
				cancel()
				return err
			case <-notify:
				if drainInto() {
					cancel()
					return nil
				}
			case <-doneCh:
				if drainInto() {
					cancel()
					return nil
				}
				select {
				case err := <-errCh:
					cancel()
					return err
				default:
					return nil
				}
			case <-ctx.Done():
				cancel()
				return ctx.Err()
			}
		}
	}}
}

// Pair is the element type Zip2 emits.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip2 pairs items from fa and fb positionally, completing as soon as
// either source is exhausted.
func Zip2[A, B any](fa Flux[A], fb Flux[B]) Flux[Pair[A, B]] {
	return Flux[Pair[A, B]]{produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[Pair[A, B]]) error {
		ca := make(chan A)
		cb := make(chan B)
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		errCh := make(chan error, 2)

		go func() {
			err := fa.produce(cctx, sched, func(v A) bool {
				select {
				case ca <- v:
					return true
				case <-cctx.Done():
					return false
				}
			})
			close(ca)
			if err != nil {
				errCh <- err
			}
		}()
		go func() {
			err := fb.produce(cctx, sched, func(v B) bool {
				select {
				case cb <- v:
					return true
				case <-cctx.Done():
					return false
				}
			})
			close(cb)
			if err != nil {
				errCh <- err
			}
		}()

		for {
			va, oka := <-ca
			vb, okb := <-cb
			if !oka || !okb {
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			if !emit(Pair[A, B]{First: va, Second: vb}) {
				cancel()
				return nil
			}
		}
	}}
}
