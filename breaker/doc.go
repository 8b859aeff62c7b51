// Package breaker implements a CircuitBreaker with the classic
// CLOSED/OPEN/HALF_OPEN state machine, grounded on the teacher's
// resilience.CircuitBreaker but driven off a slidingwindow.Window instead
// of a bare consecutive-failure counter: a circuit can trip either on a
// run of consecutive failures (FailureThreshold) or on a windowed failure
// rate (FailureRateThreshold, once MinSamples have landed), matching the
// spec's richer trip conditions. State transitions are reported through an
// event.Listener the same way the teacher reports them through
// CircuitBreakerConfig.OnStateChange.
package breaker
