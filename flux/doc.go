// Package flux implements Flux[T], a lazy, cold producer of zero to many
// terminal values followed by completion or an error. Like mono.Mono, a
// Flux is just a description until something subscribes; the same source
// re-run per subscription rule applies.
//
// Internally a Flux wraps a produce function that pushes items to an emit
// callback; emit returns false to signal "stop, I've lost interest" (the
// shape a Take(n) or a cancelled context uses to end the upstream early
// instead of draining it). This push model is the natural fit for sources
// like Interval and Merge that have no notion of "pull the next item on
// demand" — grounded on the same channel-and-goroutine idiom the teacher
// uses for fan-out in resilience.Bulkhead, generalized from a bounded
// semaphore to an item pipeline.
//
// Operators that change the carried type (Map, FlatMap, ConcatMap, Buffer,
// Window, Zip2) are free functions, mirroring mono.Map/mono.Bind, since Go
// forbids a method from introducing a new type parameter.
//
// Interval and Merge are hot relative to their consumer: ticks and merged
// items arrive on their own schedule rather than waiting to be pulled, so
// each decouples its producer from the subscriber through a bounded
// overflowBuffer (see backpressure.go). Once that buffer saturates, the
// configured OverflowStrategy decides what happens — the default,
// OverflowError, fails the stream with a corerr.OverflowError and reports
// every drop or rejection via event.BackpressureOverflow, so overflow is
// always observable and never a silent drop.
package flux
