package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/reactorcore/corerr"
	"github.com/jonwraymond/reactorcore/event"
	"github.com/jonwraymond/reactorcore/mono"
	"github.com/jonwraymond/reactorcore/resilience"
	"github.com/jonwraymond/reactorcore/slidingwindow"
)

// Config configures a CircuitBreaker. Zero values fall back to the
// defaults noted per field, the same "apply defaults in the constructor"
// shape as the teacher's resilience.CircuitBreakerConfig (not part of this
// module's resilience package).
type Config struct {
	Name string // used only to label emitted events

	// FailureThreshold trips the circuit after this many consecutive
	// failures while Closed. Default: 5.
	FailureThreshold int

	// FailureRateThreshold trips the circuit once the sliding window's
	// failure rate reaches it, provided at least MinSamples have landed.
	// 0 disables rate-based tripping.
	FailureRateThreshold float64
	MinSamples           int

	// WindowSize is the sliding window's sample capacity. Default: 64.
	WindowSize   int
	WindowMaxAge time.Duration

	// ResetTimeout is how long Open is held before probing via HalfOpen.
	// Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxRequests caps concurrent probes while HalfOpen. Default: 1.
	HalfOpenMaxRequests int

	// CallTimeout bounds each Execute call, if > 0.
	CallTimeout time.Duration

	// IsExcluded reports whether err should NOT count as a failure (e.g. a
	// client validation error the breaker shouldn't hold the backend
	// responsible for). Default: nothing is excluded.
	IsExcluded func(err error) bool

	// Listener observes state transitions. Default: event.Nop.
	Listener event.Listener
}

func (c *Config) applyDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.WindowSize <= 0 {
		c.WindowSize = 64
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 30 * time.Second
	}
	if c.HalfOpenMaxRequests <= 0 {
		c.HalfOpenMaxRequests = 1
	}
	if c.IsExcluded == nil {
		c.IsExcluded = func(error) bool { return false }
	}
	if c.Listener == nil {
		c.Listener = event.Nop
	}
}

// CircuitBreaker guards calls to a flaky dependency, tripping open once
// failures cross a threshold and probing recovery via a half-open window.
type CircuitBreaker struct {
	cfg    Config
	window *slidingwindow.Window

	mu                  sync.Mutex
	state               State
	lastTransition      time.Time
	consecutiveFailures int

	// halfOpenLimiter caps concurrent probes while HalfOpen, rebuilt fresh
	// on every transition into HalfOpen. Adapted from resilience.Bulkhead,
	// which already implements exactly this acquire-or-reject-at-capacity
	// shape; every HalfOpen outcome transitions the breaker away from
	// HalfOpen immediately, so slots are never released individually, only
	// discarded wholesale on the next transitionLocked.
	halfOpenLimiter *resilience.Bulkhead
}

// New builds a CircuitBreaker, starting Closed.
func New(cfg Config) *CircuitBreaker {
	cfg.applyDefaults()
	return &CircuitBreaker{
		cfg:            cfg,
		window:         slidingwindow.New(cfg.WindowSize, cfg.WindowMaxAge),
		state:          Closed,
		lastTransition: time.Now(),
	}
}

// Execute runs op if the circuit allows it, records the outcome, and
// returns op's error (or ErrOpen without calling op at all).
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	start := time.Now()
	var err error
	if cb.cfg.CallTimeout > 0 {
		timeout := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cb.cfg.CallTimeout})
		err = timeout.Execute(ctx, op)
		if errors.Is(err, resilience.ErrTimeout) {
			err = corerr.NewTimeout("breaker.Execute")
		}
	} else {
		err = op(ctx)
	}
	cb.afterRequest(err, time.Since(start))
	return err
}

// Call wraps fn in Execute and lifts the outcome into a mono.Mono, so a
// circuit-guarded call composes into a larger Mono/Flux pipeline instead of
// requiring a bare error-returning call at the edge of one. Free-standing
// because Go methods cannot introduce a new type parameter (mirrors
// mono.Map/mono.Bind).
func Call[T any](cb *CircuitBreaker, fn func(context.Context) (T, error)) mono.Mono[T] {
	return mono.FromCallableCtx(func(ctx context.Context) (T, error) {
		var v T
		err := cb.Execute(ctx, func(ctx context.Context) error {
			out, err := fn(ctx)
			if err != nil {
				return err
			}
			v = out
			return nil
		})
		return v, err
	})
}

// State reports the current state, resolving an elapsed ResetTimeout into
// HalfOpen as a side effect (mirrors the teacher's currentStateLocked).
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the circuit back to Closed, clearing counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionLocked(Closed)
	cb.consecutiveFailures = 0
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case Open:
		cb.window.RecordRejected()
		return ErrOpen
	case HalfOpen:
		if err := cb.halfOpenLimiter.Acquire(context.Background()); err != nil {
			cb.window.RecordRejected()
			return ErrOpen
		}
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error, latency time.Duration) {
	isFailure := err != nil && !cb.cfg.IsExcluded(err)
	cb.window.Record(slidingwindow.Sample{
		Timestamp: time.Now(),
		Success:   !isFailure,
		LatencyMS: float64(latency.Milliseconds()),
	})

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case Closed:
		if isFailure {
			cb.consecutiveFailures++
		} else {
			cb.consecutiveFailures = 0
		}
		if cb.shouldTripLocked() {
			cb.transitionLocked(Open)
		}

	case HalfOpen:
		if isFailure {
			cb.transitionLocked(Open)
		} else {
			cb.transitionLocked(Closed)
			cb.consecutiveFailures = 0
		}
	}
}

func (cb *CircuitBreaker) shouldTripLocked() bool {
	if cb.consecutiveFailures >= cb.cfg.FailureThreshold {
		return true
	}
	if cb.cfg.FailureRateThreshold > 0 {
		snap := cb.window.Snapshot(time.Now())
		if snap.Count >= cb.cfg.MinSamples && snap.FailureRate >= cb.cfg.FailureRateThreshold {
			return true
		}
	}
	return false
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == Open && time.Since(cb.lastTransition) >= cb.cfg.ResetTimeout {
		cb.transitionLocked(HalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.lastTransition = time.Now()
	if to == HalfOpen {
		cb.halfOpenLimiter = resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cb.cfg.HalfOpenMaxRequests,
		})
	}
	snap := cb.window.Snapshot(time.Now())
	cb.cfg.Listener(event.Event{
		Kind:      event.CircuitStateChanged,
		Name:      cb.cfg.Name,
		Timestamp: cb.lastTransition,
		FromState: from.String(),
		ToState:   to.String(),
		Snapshot:  snap,
	})
}
