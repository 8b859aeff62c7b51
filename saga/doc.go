// Package saga implements the Saga pattern: an ordered list of forward
// steps, each paired with an optional compensation, run in sequence. The
// first failure unwinds every completed step's compensation in reverse
// order (LIFO) before the failure is reported.
//
// Grounded on the reference AleutianLocal resilience.Saga (sequential
// Execute, reverse-order compensate-on-fail, compensation errors logged
// rather than propagated), generalized so each step is a mono.Mono instead
// of a plain func(context.Context) error and the coordinator itself
// composes as a Mono — spec §4.8 requires the coordinator be embeddable in
// larger Mono/Flux pipelines, which a bare sequential executor isn't.
package saga
