package cache_test

import (
	"context"
	"testing"

	"github.com/jonwraymond/reactorcore/cache"
)

func TestCacheMiddleware_MemoizedCall(t *testing.T) {
	mc := cache.NewMemoryCache(cache.DefaultPolicy())
	keyer := cache.NewDefaultKeyer()
	mw := cache.NewCacheMiddleware(mc, keyer, cache.DefaultPolicy(), nil)

	calls := 0
	fn := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("result"), nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r := mw.MemoizedCall("calc", map[string]any{"x": 1}, nil, fn).ToResult(ctx)
		if r.IsFailure() {
			t.Fatalf("unexpected error: %v", r.UnwrapErr())
		}
		if string(r.Unwrap()) != "result" {
			t.Fatalf("got %q", r.Unwrap())
		}
	}

	if calls != 1 {
		t.Fatalf("expected fn to run once, ran %d times", calls)
	}
}

func TestCacheMiddleware_MemoizedCall_SkipsUnsafeTags(t *testing.T) {
	mc := cache.NewMemoryCache(cache.DefaultPolicy())
	keyer := cache.NewDefaultKeyer()
	mw := cache.NewCacheMiddleware(mc, keyer, cache.DefaultPolicy(), nil)

	calls := 0
	fn := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("result"), nil
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		r := mw.MemoizedCall("mutate", nil, []string{"write"}, fn).ToResult(ctx)
		if r.IsFailure() {
			t.Fatalf("unexpected error: %v", r.UnwrapErr())
		}
	}

	if calls != 2 {
		t.Fatalf("expected fn to run every time for unsafe tags, ran %d times", calls)
	}
}
