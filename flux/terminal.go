package flux

import (
	"context"

	"github.com/jonwraymond/reactorcore/mono"
)

// Subscribe drives f to completion, calling onNext for each item. onNext
// returning false stops the subscription early without error.
func (f Flux[T]) Subscribe(ctx context.Context, onNext func(T) bool) error {
	sched := f.effectiveScheduler()
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return f.produce(cctx, sched, func(v T) bool {
		if cctx.Err() != nil {
			return false
		}
		return onNext(v)
	})
}

// CollectList subscribes and gathers every item into a slice, as a Mono so
// it composes with the rest of the Mono operator set.
func (f Flux[T]) CollectList() mono.Mono[[]T] {
	return mono.FromCallableCtx(func(ctx context.Context) ([]T, error) {
		var out []T
		err := f.Subscribe(ctx, func(v T) bool {
			out = append(out, v)
			return true
		})
		return out, err
	})
}

// Count subscribes and counts the items emitted.
func (f Flux[T]) Count() mono.Mono[int] {
	return mono.FromCallableCtx(func(ctx context.Context) (int, error) {
		n := 0
		err := f.Subscribe(ctx, func(T) bool {
			n++
			return true
		})
		return n, err
	})
}

// Reduce folds every item into an accumulator starting from seed, left to
// right. Free-standing since the accumulator type A can differ from T.
func Reduce[T, A any](f Flux[T], seed A, fn func(acc A, v T) A) mono.Mono[A] {
	return mono.FromCallableCtx(func(ctx context.Context) (A, error) {
		acc := seed
		err := f.Subscribe(ctx, func(v T) bool {
			acc = fn(acc, v)
			return true
		})
		return acc, err
	})
}
