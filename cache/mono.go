package cache

import (
	"context"

	"github.com/jonwraymond/reactorcore/mono"
)

// MemoizedCall adapts CacheMiddleware.Execute into a Mono, so a Publisher
// that wraps a cold, possibly-expensive call can be subscribed to repeatedly
// without re-running fn once a cached value exists. callID plays the role
// of the cache key's scope (the same role toolID plays in Execute); tags
// flow through to the configured SkipRule unchanged.
func (m *CacheMiddleware) MemoizedCall(callID string, input any, tags []string, fn func(ctx context.Context) ([]byte, error)) mono.Mono[[]byte] {
	return mono.FromCallableCtx(func(ctx context.Context) ([]byte, error) {
		return m.Execute(ctx, callID, input, tags, func(ctx context.Context, _ string, _ any) ([]byte, error) {
			return fn(ctx)
		})
	})
}
