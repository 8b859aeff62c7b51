package flux

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/reactorcore/event"
	"github.com/jonwraymond/reactorcore/internal/backoff"
	"github.com/jonwraymond/reactorcore/resilience"
	"github.com/jonwraymond/reactorcore/scheduler"
)

// Map transforms every item. Free-standing because Go methods cannot
// introduce a new type parameter (mirrors mono.Map).
func Map[T, U any](f Flux[T], fn func(T) U) Flux[U] {
	return Flux[U]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[U]) error {
		return f.produce(ctx, sched, func(v T) bool { return emit(fn(v)) })
	}}
}

// Filter drops items that fail pred.
func (f Flux[T]) Filter(pred func(T) bool) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		return f.produce(ctx, sched, func(v T) bool {
			if !pred(v) {
				return true
			}
			return emit(v)
		})
	}}
}

// Distinct drops items already seen, by value equality. Free-standing
// because it needs a comparable constraint tighter than Flux[T]'s own any.
func Distinct[T comparable](f Flux[T]) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		seen := make(map[T]struct{})
		return f.produce(ctx, sched, func(v T) bool {
			if _, ok := seen[v]; ok {
				return true
			}
			seen[v] = struct{}{}
			return emit(v)
		})
	}}
}

// Take emits at most n items, then cancels the upstream.
func (f Flux[T]) Take(n int) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		if n <= 0 {
			return nil
		}
		count := 0
		return f.produce(ctx, sched, func(v T) bool {
			count++
			cont := emit(v)
			return cont && count < n
		})
	}}
}

// Skip drops the first n items, then emits the rest.
func (f Flux[T]) Skip(n int) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		count := 0
		return f.produce(ctx, sched, func(v T) bool {
			if count < n {
				count++
				return true
			}
			return emit(v)
		})
	}}
}

// TakeWhile emits items while pred holds, stopping (without error) at the
// first item that fails it.
func (f Flux[T]) TakeWhile(pred func(T) bool) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		return f.produce(ctx, sched, func(v T) bool {
			if !pred(v) {
				return false
			}
			return emit(v)
		})
	}}
}

// SkipWhile drops items while pred holds, then emits everything from the
// first failing item onward (including that item).
func (f Flux[T]) SkipWhile(pred func(T) bool) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		skipping := true
		return f.produce(ctx, sched, func(v T) bool {
			if skipping {
				if pred(v) {
					return true
				}
				skipping = false
			}
			return emit(v)
		})
	}}
}

// FlatMap subscribes to fn(item) for every upstream item concurrently,
// interleaving their emissions downstream without preserving order.
func FlatMap[T, U any](f Flux[T], fn func(T) Flux[U]) Flux[U] {
	return Flux[U]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[U]) error {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var mu sync.Mutex
		var wg sync.WaitGroup
		errCh := make(chan error, 1)
		stop := false

		outerErr := f.produce(cctx, sched, func(v T) bool {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ierr := fn(v).produce(cctx, sched, func(u U) bool {
					mu.Lock()
					defer mu.Unlock()
					if stop {
						return false
					}
					if !emit(u) {
						stop = true
						return false
					}
					return true
				})
				if ierr != nil {
					select {
					case errCh <- ierr:
						cancel()
					default:
					}
				}
			}()
			mu.Lock()
			s := stop
			mu.Unlock()
			return !s
		})
		wg.Wait()
		select {
		case ierr := <-errCh:
			return ierr
		default:
			return outerErr
		}
	}}
}

// ConcatMap subscribes to fn(item) for each upstream item in order, only
// moving to the next item's inner Flux once the previous one completes.
func ConcatMap[T, U any](f Flux[T], fn func(T) Flux[U]) Flux[U] {
	return Flux[U]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[U]) error {
		var innerErr error
		stop := false
		outerErr := f.produce(ctx, sched, func(v T) bool {
			ierr := fn(v).produce(ctx, sched, func(u U) bool {
				if !emit(u) {
					stop = true
					return false
				}
				return true
			})
			if ierr != nil {
				innerErr = ierr
				stop = true
				return false
			}
			return !stop
		})
		if innerErr != nil {
			return innerErr
		}
		return outerErr
	}}
}

// Buffer batches upstream items into slices of size, flushing a final
// partial batch at completion. Free-standing: it changes the carried type
// from T to []T.
func Buffer[T any](f Flux[T], size int) Flux[[]T] {
	if size <= 0 {
		size = 1
	}
	return Flux[[]T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[[]T]) error {
		var buf []T
		stopped := false
		err := f.produce(ctx, sched, func(v T) bool {
			buf = append(buf, v)
			if len(buf) < size {
				return true
			}
			batch := buf
			buf = nil
			if !emit(batch) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if !stopped && len(buf) > 0 {
			emit(buf)
		}
		return nil
	}}
}

// Window groups upstream items into sub-Fluxes of size items each,
// materialized eagerly per window (unlike Reactor's lazy windows) since a
// Flux here is a cheap replayable description, not a live hot sequence.
func Window[T any](f Flux[T], size int) Flux[Flux[T]] {
	return Map(Buffer(f, size), func(batch []T) Flux[T] { return FromIterable(batch) })
}

// Delay waits d before emitting each item, armed through the attached
// Scheduler.
func (f Flux[T]) Delay(d time.Duration) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		return f.produce(ctx, sched, func(v T) bool {
			done := make(chan struct{}, 1)
			h := sched.Schedule(func() { done <- struct{}{} }, d)
			select {
			case <-done:
			case <-ctx.Done():
				h.Cancel()
				return false
			}
			return emit(v)
		})
	}}
}

// Throttle rate-limits emission to burst tokens refilled at ratePerSecond,
// reusing resilience.RateLimiter's token-bucket refill algorithm instead of
// a bespoke one — Allow/Tokens are resilience.RateLimiter's own public
// surface; only the wait-duration-then-reschedule glue below is specific to
// driving it from a Flux producer through the attached Scheduler instead of
// resilience.RateLimiter.Wait's own time.After (suspension here must go
// through sched.Schedule like every other Flux suspension point, so a
// Cooperative scheduler's single loop goroutine is never blocked directly).
func (f Flux[T]) Throttle(burst int, ratePerSecond float64) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		limiter := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: ratePerSecond, Burst: burst})
		return f.produce(ctx, sched, func(v T) bool {
			for !limiter.Allow() {
				tokensNeeded := 1 - limiter.Tokens()
				wait := time.Duration(tokensNeeded / ratePerSecond * float64(time.Second))
				if wait <= 0 {
					continue
				}
				done := make(chan struct{}, 1)
				h := sched.Schedule(func() { done <- struct{}{} }, wait)
				select {
				case <-done:
				case <-ctx.Done():
					h.Cancel()
					return false
				}
			}
			return emit(v)
		})
	}}
}

// Parallel fans each item out to a bounded ParallelPool of workers running
// fn, then serializes results back downstream in completion order (not
// necessarily input order). Go has no separate "parallel rail" type the
// way Reactor does, so this fuses fan-out and map into one operator.
func (f Flux[T]) Parallel(workers int, fn func(T) T) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		pool := scheduler.NewParallelPool(workers)
		defer pool.Close()

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		out := make(chan T)
		var wg sync.WaitGroup
		produceErr := make(chan error, 1)

		wg.Add(1) // held by the producer so out cannot close before the first item is scheduled
		go func() {
			defer wg.Done()
			err := f.produce(cctx, sched, func(v T) bool {
				wg.Add(1)
				pool.Schedule(func() {
					defer wg.Done()
					select {
					case out <- fn(v):
					case <-cctx.Done():
					}
				}, 0)
				return true
			})
			produceErr <- err
		}()
		go func() { wg.Wait(); close(out) }()

		for v := range out {
			if !emit(v) {
				cancel()
				return nil
			}
		}
		select {
		case err := <-produceErr:
			return err
		default:
			return nil
		}
	}}
}

// OnErrorContinue swallows an upstream error by invoking handler with it
// and completing normally instead of propagating the failure.
func (f Flux[T]) OnErrorContinue(handler func(error)) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		if err := f.produce(ctx, sched, emit); err != nil {
			handler(err)
		}
		return nil
	}}
}

// OnErrorResume switches to fallback(err) when the upstream fails,
// forwarding the fallback's own items (and error, if any) downstream.
func (f Flux[T]) OnErrorResume(fallback func(error) Flux[T]) Flux[T] {
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		err := f.produce(ctx, sched, emit)
		if err == nil {
			return nil
		}
		return fallback(err).produce(ctx, sched, emit)
	}}
}

// Retry resubscribes the whole sequence (re-emitting items already seen)
// up to maxAttempts times while it ends in an error, waiting between
// attempts per policy. listener (nil is fine) observes each scheduled
// retry via event.RetryAttempted, before the inter-attempt delay is armed.
func (f Flux[T]) Retry(maxAttempts int, policy backoff.Policy, listener event.Listener) Flux[T] {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if listener == nil {
		listener = event.Nop
	}
	return Flux[T]{scheduler: f.scheduler, produce: func(ctx context.Context, sched scheduler.Scheduler, emit emitFunc[T]) error {
		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			stopped := false
			lastErr = f.produce(ctx, sched, func(v T) bool {
				cont := emit(v)
				if !cont {
					stopped = true
				}
				return cont
			})
			if lastErr == nil || stopped {
				return lastErr
			}
			if attempt == maxAttempts {
				break
			}
			d := policy.Delay(attempt)
			listener(event.Event{
				Kind:      event.RetryAttempted,
				Timestamp: time.Now(),
				Attempt:   attempt,
				Delay:     d,
				Err:       lastErr,
			})
			if d > 0 {
				done := make(chan struct{}, 1)
				h := sched.Schedule(func() { done <- struct{}{} }, d)
				select {
				case <-done:
				case <-ctx.Done():
					h.Cancel()
					return ctx.Err()
				}
			}
		}
		return lastErr
	}}
}
