package flux

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/reactorcore/corerr"
	"github.com/jonwraymond/reactorcore/event"
)

func TestOverflowBuffer_ErrorStrategyRejectsOnceFull(t *testing.T) {
	var events []event.Event
	buf := newOverflowBuffer[int](2, OverflowError, func(e event.Event) { events = append(events, e) }, "test")

	if err := buf.push(1); err != nil {
		t.Fatalf("unexpected error on first push: %v", err)
	}
	if err := buf.push(2); err != nil {
		t.Fatalf("unexpected error on second push: %v", err)
	}
	err := buf.push(3)
	if err == nil {
		t.Fatal("expected OverflowError once the buffer is full")
	}
	var overflowErr *corerr.OverflowError
	if !errors.As(err, &overflowErr) {
		t.Fatalf("got %v, want *corerr.OverflowError", err)
	}
	if len(events) != 1 || events[0].Kind != event.BackpressureOverflow {
		t.Fatalf("expected one BackpressureOverflow event, got %v", events)
	}
	if got := buf.drain(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("OverflowError must not have buffered the rejected item, got %v", got)
	}
}

func TestOverflowBuffer_DropLatestKeepsBufferedItems(t *testing.T) {
	buf := newOverflowBuffer[int](2, OverflowDropLatest, nil, "test")
	_ = buf.push(1)
	_ = buf.push(2)
	if err := buf.push(3); err != nil {
		t.Fatalf("DropLatest should never return an error, got %v", err)
	}
	got := buf.drain()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2] (the new item 3 discarded)", got)
	}
}

func TestOverflowBuffer_DropOldestEvictsFrontOfBuffer(t *testing.T) {
	buf := newOverflowBuffer[int](2, OverflowDropOldest, nil, "test")
	_ = buf.push(1)
	_ = buf.push(2)
	if err := buf.push(3); err != nil {
		t.Fatalf("DropOldest should never return an error, got %v", err)
	}
	got := buf.drain()
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("got %v, want [2 3] (the oldest item 1 evicted)", got)
	}
}

func TestOverflowBuffer_LatestCoalescesToOneSlot(t *testing.T) {
	buf := newOverflowBuffer[int](2, OverflowLatest, nil, "test")
	_ = buf.push(1)
	_ = buf.push(2)
	_ = buf.push(3)
	got := buf.drain()
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("got %v, want [3] (Latest keeps only the most recent item)", got)
	}
}

func TestIntervalWithOverflow_ErrorStrategyFailsOnceBufferSaturates(t *testing.T) {
	var events []event.Event
	f := IntervalWithOverflow(time.Millisecond, 2, OverflowError, func(e event.Event) {
		events = append(events, e)
	})
	err := f.Subscribe(context.Background(), func(v int) bool {
		time.Sleep(20 * time.Millisecond) // far slower than the 1ms tick
		return true
	})
	var overflowErr *corerr.OverflowError
	if !errors.As(err, &overflowErr) {
		t.Fatalf("got %v, want *corerr.OverflowError once the buffer saturated", err)
	}
	found := false
	for _, e := range events {
		if e.Kind == event.BackpressureOverflow {
			found = true
		}
	}
	if !found {
		t.Fatal("expected at least one BackpressureOverflow event before the failure")
	}
}

func TestMergeWithOverflow_DropOldestNeverFailsUnderPressure(t *testing.T) {
	big := make([]int, 20)
	for i := range big {
		big[i] = i
	}
	var events []event.Event
	f := MergeWithOverflow(2, OverflowDropOldest, func(e event.Event) {
		events = append(events, e)
	}, FromIterable(big))

	var got []int
	err := f.Subscribe(context.Background(), func(v int) bool {
		got = append(got, v)
		time.Sleep(time.Millisecond)
		return true
	})
	if err != nil {
		t.Fatalf("DropOldest must never surface an error, got %v", err)
	}
	if len(got) == len(big) {
		t.Fatalf("expected DropOldest to discard items under pressure instead of delivering all %d", len(big))
	}
	found := false
	for _, e := range events {
		if e.Kind == event.BackpressureOverflow {
			found = true
		}
	}
	if !found {
		t.Fatal("expected at least one BackpressureOverflow event")
	}
}
