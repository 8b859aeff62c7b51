package slidingwindow

import (
	"testing"
	"time"
)

func TestRecord_EvictsOldestPastCapacity(t *testing.T) {
	w := New(4, 0)
	base := time.Now()
	for i := 0; i < 6; i++ {
		w.Record(Sample{Timestamp: base, Success: true, LatencyMS: float64(i)})
	}
	if got := w.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4 (capacity rounds to power of 2, oldest evicted)", got)
	}
}

func TestSnapshot_EmptyWindow(t *testing.T) {
	w := New(8, 0)
	snap := w.Snapshot(time.Now())
	if snap.Count != 0 || snap.FailureRate != 0 {
		t.Fatalf("got %+v, want zero-valued Snapshot", snap)
	}
}

func TestSnapshot_ComputesFailureRate(t *testing.T) {
	w := New(8, 0)
	now := time.Now()
	for i := 0; i < 3; i++ {
		w.Record(Sample{Timestamp: now, Success: true})
	}
	for i := 0; i < 1; i++ {
		w.Record(Sample{Timestamp: now, Success: false})
	}
	snap := w.Snapshot(now)
	if snap.Count != 4 || snap.Successes != 3 || snap.Failures != 1 {
		t.Fatalf("got %+v, want Count=4 Successes=3 Failures=1", snap)
	}
	if snap.FailureRate != 0.25 {
		t.Fatalf("FailureRate = %v, want 0.25", snap.FailureRate)
	}
}

func TestSnapshot_ExcludesSamplesOlderThanMaxAge(t *testing.T) {
	w := New(8, 50*time.Millisecond)
	now := time.Now()
	w.Record(Sample{Timestamp: now.Add(-100 * time.Millisecond), Success: true})
	w.Record(Sample{Timestamp: now, Success: false})

	snap := w.Snapshot(now)
	if snap.Count != 1 || snap.Failures != 1 {
		t.Fatalf("got %+v, want only the recent sample counted", snap)
	}
}

func TestSnapshot_ComputesAvgLatency(t *testing.T) {
	w := New(8, 0)
	now := time.Now()
	for _, ms := range []float64{10, 20, 30} {
		w.Record(Sample{Timestamp: now, Success: true, LatencyMS: ms})
	}
	snap := w.Snapshot(now)
	if snap.AvgLatency != 20 {
		t.Fatalf("AvgLatency = %v, want 20", snap.AvgLatency)
	}
}

func TestSnapshot_TracksRejectedSeparatelyFromTotal(t *testing.T) {
	w := New(8, 0)
	now := time.Now()
	w.Record(Sample{Timestamp: now, Success: true})
	w.Record(Sample{Timestamp: now, Success: false})
	w.RecordRejected()
	w.RecordRejected()
	w.RecordRejected()

	snap := w.Snapshot(now)
	if snap.Count != 2 {
		t.Fatalf("Count = %d, want 2 (rejections don't occupy a ring slot)", snap.Count)
	}
	if snap.Rejected != 3 {
		t.Fatalf("Rejected = %d, want 3", snap.Rejected)
	}
	if snap.Total != 5 {
		t.Fatalf("Total = %d, want Count+Rejected = 5", snap.Total)
	}
}

func TestSnapshot_PercentilesOrderCorrectly(t *testing.T) {
	w := New(16, 0)
	now := time.Now()
	for _, ms := range []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		w.Record(Sample{Timestamp: now, Success: true, LatencyMS: ms})
	}
	snap := w.Snapshot(now)
	if !(snap.P50 <= snap.P95 && snap.P95 <= snap.P99) {
		t.Fatalf("percentiles out of order: p50=%v p95=%v p99=%v", snap.P50, snap.P95, snap.P99)
	}
	if snap.P99 != 100 {
		t.Fatalf("P99 = %v, want 100 (the max observed latency)", snap.P99)
	}
}
