package slidingwindow

import (
	"sync"
	"time"
)

// Sample is one recorded outcome: a call's success/failure and how long it
// took.
type Sample struct {
	Timestamp time.Time
	Success   bool
	LatencyMS float64
}

// Snapshot summarizes the samples currently held in a Window.
type Snapshot struct {
	Count       int
	Successes   int
	Failures    int
	Rejected    int     // calls turned away (e.g. breaker Open) without a Sample
	Total       int     // Count + Rejected
	FailureRate float64 // 0 if Count == 0
	P50, P95    float64 // latency percentiles, in ms
	P99         float64
	AvgLatency  float64 // mean latency in ms, over Count (rejected calls have none)
}

// Window holds the last Capacity samples (or fewer, if maxAge evicts some
// on read) and summarizes them on demand. Safe for concurrent use.
type Window struct {
	mu       sync.Mutex
	ring     *ring[Sample]
	maxAge   time.Duration
	rejected int
}

// New creates a Window of the given capacity. maxAge, if > 0, excludes
// samples older than maxAge from Snapshot even if they're still held in
// the ring (a combined count-and-time window).
func New(capacity int, maxAge time.Duration) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{ring: newRing[Sample](capacity), maxAge: maxAge}
}

// Record appends a sample, evicting the oldest if the window is full.
func (w *Window) Record(s Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ring.Push(s)
}

// RecordRejected counts a call that was turned away before it ever ran (a
// breaker Open rejection, a load-balancer call with no healthy instance)
// without occupying a ring slot — rejections have no latency or
// success/failure outcome to weigh against the retained samples.
func (w *Window) RecordRejected() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rejected++
}

// Snapshot summarizes the samples held as of now.
func (w *Window) Snapshot(now time.Time) Snapshot {
	w.mu.Lock()
	samples := w.ring.Slice()
	rejected := w.rejected
	w.mu.Unlock()

	kept := samples[:0:0]
	for _, s := range samples {
		if w.maxAge <= 0 || now.Sub(s.Timestamp) <= w.maxAge {
			kept = append(kept, s)
		}
	}

	snap := Snapshot{Count: len(kept), Rejected: rejected, Total: len(kept) + rejected}
	if snap.Count == 0 {
		return snap
	}

	latencies := make([]float64, 0, len(kept))
	var latencySum float64
	for _, s := range kept {
		if s.Success {
			snap.Successes++
		} else {
			snap.Failures++
		}
		latencies = append(latencies, s.LatencyMS)
		latencySum += s.LatencyMS
	}
	snap.FailureRate = float64(snap.Failures) / float64(snap.Count)
	snap.AvgLatency = latencySum / float64(snap.Count)
	snap.P50 = percentile(latencies, 0.50)
	snap.P95 = percentile(latencies, 0.95)
	snap.P99 = percentile(latencies, 0.99)
	return snap
}

// Len reports how many samples the window currently holds, before any
// maxAge filtering.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ring.Len()
}
