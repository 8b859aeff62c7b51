package flux

import (
	"sync"

	"github.com/jonwraymond/reactorcore/corerr"
	"github.com/jonwraymond/reactorcore/event"
)

// OverflowStrategy controls what a bounded buffer does when a hot source
// (one that produces on its own schedule rather than waiting on demand, like
// Interval or Merge) outpaces its subscriber.
type OverflowStrategy int

const (
	// OverflowError fails the stream with a corerr.OverflowError. Default.
	OverflowError OverflowStrategy = iota
	// OverflowDropLatest discards the newly produced item, keeping whatever
	// is already buffered.
	OverflowDropLatest
	// OverflowDropOldest discards the oldest buffered item to make room for
	// the new one.
	OverflowDropOldest
	// OverflowLatest keeps only the single most recent item, coalescing the
	// whole buffer down to one slot.
	OverflowLatest
)

// overflowBuffer is a bounded FIFO that applies strategy once full, used by
// Interval and Merge to decouple a hot producer from a possibly-slower
// subscriber instead of letting the producer block forever or drop silently.
// Every drop or rejection is reported to listener as event.BackpressureOverflow,
// so overflow is always observable, never a silent loss.
type overflowBuffer[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	strategy OverflowStrategy
	listener event.Listener
	name     string
}

func newOverflowBuffer[T any](capacity int, strategy OverflowStrategy, listener event.Listener, name string) *overflowBuffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	if listener == nil {
		listener = event.Nop
	}
	return &overflowBuffer[T]{
		capacity: capacity,
		strategy: strategy,
		listener: listener,
		name:     name,
	}
}

// push adds v to the buffer, applying strategy if it's already at capacity.
// It returns a non-nil error only for OverflowError, in which case v was not
// buffered at all.
func (b *overflowBuffer[T]) push(v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) < b.capacity {
		b.items = append(b.items, v)
		return nil
	}

	b.emitOverflow()

	switch b.strategy {
	case OverflowDropLatest:
		return nil
	case OverflowDropOldest:
		b.items = append(b.items[1:], v)
		return nil
	case OverflowLatest:
		b.items = b.items[:0]
		b.items = append(b.items, v)
		return nil
	default: // OverflowError
		return corerr.NewOverflow(b.name, b.capacity)
	}
}

func (b *overflowBuffer[T]) emitOverflow() {
	b.listener(event.Event{
		Kind:    event.BackpressureOverflow,
		Name:    b.name,
		Demand:  int64(b.capacity),
		Pending: int64(len(b.items)),
	})
}

// drain returns and clears every currently buffered item.
func (b *overflowBuffer[T]) drain() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return nil
	}
	out := b.items
	b.items = nil
	return out
}
