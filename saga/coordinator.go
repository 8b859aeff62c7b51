package saga

import (
	"context"

	"github.com/jonwraymond/reactorcore/mono"
)

// Config configures a Coordinator's callbacks, mirroring the reference
// Saga's OnStepFail/OnCompensate hooks.
type Config struct {
	// OnStepFail is called once, with the failing step's name and error,
	// before compensation begins.
	OnStepFail func(stepName string, err error)

	// OnCompensate is called after every compensation attempt, err nil on
	// success — the sink spec §4.8 requires compensation failures be
	// logged through rather than allowed to abort the unwind.
	OnCompensate func(stepName string, err error)
}

// Coordinator runs an ordered list of Steps, compensating completed steps
// in reverse order on the first forward failure (spec §4.8). A Coordinator
// is immutable after construction and safe to Run concurrently from
// multiple goroutines — each Run gets its own fresh Context and
// compensation stack.
type Coordinator struct {
	steps  []Step
	config Config
}

// New builds a Coordinator over steps, run in the given order.
func New(config Config, steps ...Step) *Coordinator {
	return &Coordinator{steps: steps, config: config}
}

// Run executes every step in order against a fresh Context, returning a
// Mono so the coordinator composes into larger pipelines (spec §4.8:
// "the coordinator is itself a Mono"). On success the Mono completes with
// the final Context; on the first step failure it completes with a
// *Error carrying the failing step's name, its error, and the
// CompensationReport from the unwind.
func (c *Coordinator) Run(ctx context.Context) mono.Mono[*Context] {
	return mono.FromCallableCtx(func(ctx context.Context) (*Context, error) {
		sc := newContext()
		completed := make([]Step, 0, len(c.steps))

		for _, step := range c.steps {
			if err := ctx.Err(); err != nil {
				report := c.compensate(ctx, sc, completed)
				return nil, &Error{StepName: step.Name, Err: err, Compensation: report}
			}

			r := step.Forward(ctx, sc).ToResult(ctx)
			if r.IsFailure() {
				err := r.UnwrapErr()
				if c.config.OnStepFail != nil {
					c.config.OnStepFail(step.Name, err)
				}
				report := c.compensate(ctx, sc, completed)
				return nil, &Error{StepName: step.Name, Err: err, Compensation: report}
			}

			sc.set(step.Name, r.Unwrap())
			completed = append(completed, step)
		}

		return sc, nil
	})
}

// compensate unwinds completed steps in reverse order, collecting a
// report of what ran and what failed. A step with a nil Compensation is
// skipped. Runs against ctx's surrounding deadline if any, but does not
// itself stop early on compensation failure — every completed step gets a
// compensation attempt regardless of earlier unwind failures.
func (c *Coordinator) compensate(ctx context.Context, sc *Context, completed []Step) CompensationReport {
	report := CompensationReport{}
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensation == nil {
			continue
		}
		report.Attempted = append(report.Attempted, step.Name)

		r := step.Compensation(ctx, sc).ToResult(ctx)
		if r.IsFailure() {
			err := r.UnwrapErr()
			report.Failures = append(report.Failures, CompensationFailure{StepName: step.Name, Err: err})
			if c.config.OnCompensate != nil {
				c.config.OnCompensate(step.Name, err)
			}
			continue
		}
		if c.config.OnCompensate != nil {
			c.config.OnCompensate(step.Name, nil)
		}
	}
	return report
}
