package mono

// Maybe distinguishes "completed with a value" from "completed empty"
// within a Success Result — Mono's third terminal state alongside value
// and error (spec's "exactly one terminal signal: value | error | empty").
type Maybe[T any] struct {
	Present bool
	Value   T
}

// Some wraps v as a present value.
func Some[T any](v T) Maybe[T] { return Maybe[T]{Present: true, Value: v} }

// None represents an empty completion.
func None[T any]() Maybe[T] { return Maybe[T]{} }
