package mono

import (
	"context"
	"time"

	"github.com/jonwraymond/reactorcore/corerr"
	"github.com/jonwraymond/reactorcore/result"
)

// ToResult subscribes, awaits the terminal signal, and collapses it into a
// Result[T, error]: a present value becomes Success, a Failure stays a
// Failure, and empty becomes Failure(EmptyError) since Result has no third
// state to carry it in (spec §7 CompositionError.EmptyMono).
func (m Mono[T]) ToResult(ctx context.Context) result.Result[T, error] {
	sub := m.Subscribe(ctx)
	defer sub.Cancel()
	r := sub.Await()
	return result.Bind(r, func(mb Maybe[T]) result.Result[T, error] {
		if !mb.Present {
			return result.Failure[T, error](corerr.NewEmpty("mono.ToResult"))
		}
		return result.Success[T, error](mb.Value)
	})
}

// Block is ToResult with an overall wall-clock timeout applied on top of
// whatever the chain's own Timeout operator already enforces.
func (m Mono[T]) Block(ctx context.Context, timeout time.Duration) result.Result[T, error] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return m.ToResult(ctx)
}
