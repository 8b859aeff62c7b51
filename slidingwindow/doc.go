// Package slidingwindow keeps a fixed-capacity ring of timestamped outcome
// samples (success/failure, latency) and summarizes it into a Snapshot the
// circuit breaker uses to decide whether to trip. The ring itself is
// grounded on the teacher pack's joeycumines-go-utilpkg/catrate/ring.go
// mask-indexed circular buffer, trimmed down to the push/slice subset a
// fixed window needs (no arbitrary-index insert, since samples only ever
// arrive at the write cursor).
package slidingwindow
