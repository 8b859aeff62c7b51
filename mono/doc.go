// Package mono implements Mono[T], a lazy, cold producer of at most one
// terminal signal: a value, an error, or empty. Nothing runs until a
// subscriber asks for one, and each subscription re-runs the producer from
// scratch — the same laziness contract as result.AsyncResult, which Mono
// uses to memoize a single subscription's outcome once it resolves.
//
// Operators (Map, Bind, Filter, Recover, Timeout, Retry, ...) build a new
// Mono by wrapping the source function rather than mutating the receiver;
// Go forbids a method from introducing a new type parameter, so operators
// that change the carried type (Map, Bind) are free functions, mirroring
// result.Map/result.Bind.
//
// Operators that suspend (Timeout, Retry) go through a scheduler.Scheduler
// rather than time.After directly, so a Mono chain can be driven by
// Immediate, Cooperative, or ParallelPool the same way scheduler.go's own
// callers are. A chain that never attaches one via On gets
// scheduler.RealTime, a zero-configuration default.
package mono
