package flux

import (
	"context"
	"errors"
	"testing"
	"time"
)

func collect[T any](t *testing.T, f Flux[T]) ([]T, error) {
	t.Helper()
	var out []T
	err := f.Subscribe(context.Background(), func(v T) bool {
		out = append(out, v)
		return true
	})
	return out, err
}

func TestFromIterable_EmitsInOrder(t *testing.T) {
	got, err := collect(t, FromIterable([]int{1, 2, 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRange_EmitsConsecutiveInts(t *testing.T) {
	got, _ := collect(t, Range(5, 3))
	want := []int{5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEmpty_EmitsNothing(t *testing.T) {
	got, err := collect(t, Empty[int]())
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, err %v, want no items no error", got, err)
	}
}

func TestError_PropagatesWithoutEmitting(t *testing.T) {
	want := errors.New("boom")
	got, err := collect(t, Error[int](want))
	if err != want || len(got) != 0 {
		t.Fatalf("got %v, err %v, want no items and error %v", got, err, want)
	}
}

func TestFromChannel_EmitsUntilClosed(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)
	got, err := collect(t, FromChannel(ch))
	if err != nil || len(got) != 3 {
		t.Fatalf("got %v, err %v", got, err)
	}
}

func TestInterval_TakeThreeEmitsFirstThreeTicks(t *testing.T) {
	f := Interval(5 * time.Millisecond).Take(3)
	got, err := collect(t, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	if got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("got %v, want [0 1 2]", got)
	}
}

func TestConcat_RunsSequencesInOrder(t *testing.T) {
	got, err := collect(t, Concat(FromIterable([]int{1, 2}), FromIterable([]int{3, 4})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMerge_DeliversAllItemsFromAllSources(t *testing.T) {
	got, err := collect(t, Merge(FromIterable([]int{1, 2}), FromIterable([]int{3, 4})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %v, want 4 items from both sources", got)
	}
	seen := map[int]bool{}
	for _, v := range got {
		seen[v] = true
	}
	for _, want := range []int{1, 2, 3, 4} {
		if !seen[want] {
			t.Fatalf("missing %d in merged output %v", want, got)
		}
	}
}

func TestMerge_PropagatesFirstError(t *testing.T) {
	want := errors.New("merge source failed")
	_, err := collect(t, Merge(FromIterable([]int{1}), Error[int](want)))
	if err != want {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func TestZip2_PairsUntilShorterExhausted(t *testing.T) {
	got, err := collect(t, Zip2(FromIterable([]int{1, 2, 3}), FromIterable([]string{"a", "b"})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d pairs, want 2 (bounded by shorter source)", len(got))
	}
	if got[0].First != 1 || got[0].Second != "a" || got[1].First != 2 || got[1].Second != "b" {
		t.Fatalf("got %v, want [(1 a) (2 b)]", got)
	}
}
