// Package resilience provides composable building blocks for protecting
// calls to flaky dependencies: rate limiting, concurrency bulkheads, and
// timeouts. Circuit breaking and retry with backoff now live in the
// breaker and mono/flux packages respectively, wired against these and
// against a sliding window instead of a bare counter — see
// breaker.CircuitBreaker (which bulkhead-limits its HalfOpen probes and
// times out calls via [Timeout]) and flux.Flux.Throttle (which rate-limits
// emission via [RateLimiter]).
//
// # Patterns
//
//   - [RateLimiter]: token bucket rate limiting. Supports burst allowance
//     and wait-on-limit.
//
//   - [Bulkhead]: semaphore-based concurrency limiting to prevent resource
//     exhaustion and isolate failures.
//
//   - [Timeout]: context-based timeout to ensure operations complete
//     within a time limit.
//
// # Thread Safety
//
// All exported types are safe for concurrent use after construction:
//
//   - [RateLimiter]: Allow(), AllowN(), Wait(), Execute() are mutex-protected
//   - [Bulkhead]: Acquire(), Release(), Execute() use a channel-based semaphore
//   - [Timeout]: Execute() is stateless and safe for concurrent use
//
// # Error Handling
//
// Each pattern returns specific sentinel errors (use errors.Is for checking):
//
//   - [ErrRateLimitExceeded]: rate limit exceeded and no wait configured
//   - [ErrBulkheadFull]: bulkhead at maximum concurrency
//   - [ErrTimeout]: operation exceeded its configured timeout
package resilience
