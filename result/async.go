package result

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// AsyncResult is an awaitable that resolves to a Result exactly once and
// caches that resolution: a second Await on the same AsyncResult returns the
// memoized Result without re-running the underlying computation, and
// concurrent Awaits that race the first resolution collapse into a single
// invocation of compute. This is the "coroutine already awaited" fix
// enshrined by spec §3.2/§9 — grounded on the dedupe-and-cache idiom the
// teacher uses in auth/jwks.go via golang.org/x/sync/singleflight, applied
// here to stream subscription results instead of JWKS fetches.
//
// An AsyncResult is a handle to one running (or completed) resolution. A
// fresh Mono/Flux subscription constructs a fresh AsyncResult, so resolving
// the *description* again (re-subscribing) re-runs compute; only repeated
// Awaits of the *same handle* are memoized.
type AsyncResult[T, E any] struct {
	compute func(ctx context.Context) Result[T, E]
	group   singleflight.Group

	resolved atomic.Bool
	mu       sync.RWMutex
	value    Result[T, E]
}

// NewAsyncResult wraps compute so that it runs at most once across any
// number of Await calls, regardless of concurrency.
func NewAsyncResult[T, E any](compute func(ctx context.Context) Result[T, E]) *AsyncResult[T, E] {
	return &AsyncResult[T, E]{compute: compute}
}

// Await resolves the AsyncResult, running compute on the first call (or the
// first call to win the race among concurrent callers) and returning the
// cached Result on every subsequent call.
func (a *AsyncResult[T, E]) Await(ctx context.Context) Result[T, E] {
	if a.resolved.Load() {
		a.mu.RLock()
		v := a.value
		a.mu.RUnlock()
		return v
	}

	select {
	case <-ctx.Done():
		return Failure[T, E](a.canceledError(ctx))
	default:
	}

	v, _, _ := a.group.Do("resolve", func() (any, error) {
		// Re-check: another goroutine may have resolved between the
		// fast-path load above and acquiring the singleflight slot.
		if a.resolved.Load() {
			a.mu.RLock()
			defer a.mu.RUnlock()
			return a.value, nil
		}
		res := a.compute(ctx)
		a.mu.Lock()
		a.value = res
		a.mu.Unlock()
		a.resolved.Store(true)
		return res, nil
	})
	return v.(Result[T, E])
}

// IsResolved reports whether Await has ever completed on this handle.
func (a *AsyncResult[T, E]) IsResolved() bool {
	return a.resolved.Load()
}

// canceledError builds a Failure payload for Await calls whose context is
// already done before compute ever runs. E is caller-supplied so we can only
// offer a generic message; callers that need a typed cancellation error
// should check ctx themselves before calling Await, or use Mono's own
// cancellation plumbing which does carry a typed CancelledError.
func (a *AsyncResult[T, E]) canceledError(ctx context.Context) E {
	var zero E
	if err, ok := any(ctx.Err()).(E); ok {
		return err
	}
	return zero
}
