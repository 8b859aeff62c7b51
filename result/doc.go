// Package result provides Result[T,E], the tagged Success/Failure outcome
// value that every stream stage in reactorcore returns instead of raising.
//
// A Result is immutable once constructed and carries exactly one of a value
// or an error. Composition (Map, Bind, MapError) never panics; the only
// documented panic is Unwrap on a Failure, which is a programming error by
// contract, not a runtime condition callers are expected to handle.
package result
