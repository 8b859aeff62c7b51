package saga

import (
	"context"

	"github.com/jonwraymond/reactorcore/mono"
)

// Step is one unit of a saga: Forward performs the action and Compensation
// (nilable) undoes it. Forward's result is stored in the Context under
// Name for later steps and for Compensation to read back.
type Step struct {
	Name         string
	Forward      func(ctx context.Context, sc *Context) mono.Mono[any]
	Compensation func(ctx context.Context, sc *Context) mono.Mono[any]
}
