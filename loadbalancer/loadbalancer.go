package loadbalancer

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/reactorcore/event"
	"github.com/jonwraymond/reactorcore/health"
	"github.com/jonwraymond/reactorcore/mono"
)

// Option configures a LoadBalancer at construction.
type Option func(*LoadBalancer)

// WithSticky enables sticky sessions: Pick(key) with a non-empty key
// always returns the same instance as long as it stays healthy, bounded
// to capacity remembered sessions (LRU-evicted).
func WithSticky(capacity int) Option {
	return func(lb *LoadBalancer) { lb.sticky = newStickyCache(capacity) }
}

// WithListener observes InstanceHealthChanged events as instances flip
// health state.
func WithListener(l event.Listener) Option {
	return func(lb *LoadBalancer) { lb.listener = l }
}

// WithMaxRetries sets how many additional instances Dispatch tries after an
// instance-level failure, each time excluding every instance that has
// already failed for this call. 0 (the default) disables retries.
func WithMaxRetries(n int) Option {
	return func(lb *LoadBalancer) { lb.maxRetries = n }
}

// WithMaxConsecutiveFailures sets how many consecutive failed probes an
// instance must accumulate before active health checking marks it
// UNHEALTHY. Default: 1 (a single failure is enough).
func WithMaxConsecutiveFailures(n int) Option {
	return func(lb *LoadBalancer) { lb.maxConsecutiveFailures = n }
}

// LoadBalancer routes calls across a pool of ServiceInstance targets using
// a pluggable Strategy, with optional sticky sessions and active health
// checking layered on top.
type LoadBalancer struct {
	strategy               Strategy
	sticky                 *stickyCache
	listener               event.Listener
	maxRetries             int
	maxConsecutiveFailures int

	mu        sync.RWMutex
	instances map[string]*ServiceInstance
	hashRing  *ConsistentHash // non-nil only when strategy is *ConsistentHash
}

// New builds a LoadBalancer using strategy to pick among registered,
// healthy instances.
func New(strategy Strategy, opts ...Option) *LoadBalancer {
	lb := &LoadBalancer{
		strategy:               strategy,
		listener:               event.Nop,
		maxConsecutiveFailures: 1,
		instances:              make(map[string]*ServiceInstance),
	}
	if ch, ok := strategy.(*ConsistentHash); ok {
		lb.hashRing = ch
	}
	for _, opt := range opts {
		opt(lb)
	}
	return lb
}

// Register adds inst to the pool.
func (lb *LoadBalancer) Register(inst *ServiceInstance) {
	lb.mu.Lock()
	lb.instances[inst.ID] = inst
	lb.mu.Unlock()
	if lb.hashRing != nil {
		lb.hashRing.add(inst)
	}
}

// Deregister removes an instance from the pool and, if sticky sessions are
// enabled, forgets any session keys pointing at it.
func (lb *LoadBalancer) Deregister(id string) {
	lb.mu.Lock()
	delete(lb.instances, id)
	lb.mu.Unlock()
	if lb.hashRing != nil {
		lb.hashRing.remove(id)
	}
	if lb.sticky != nil {
		lb.sticky.invalidate(id)
	}
}

// Instances returns a snapshot of every registered instance.
func (lb *LoadBalancer) Instances() []*ServiceInstance {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	out := make([]*ServiceInstance, 0, len(lb.instances))
	for _, inst := range lb.instances {
		out = append(out, inst)
	}
	return out
}

func (lb *LoadBalancer) healthyInstances() []*ServiceInstance {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	out := make([]*ServiceInstance, 0, len(lb.instances))
	for _, inst := range lb.instances {
		if inst.Healthy() {
			out = append(out, inst)
		}
	}
	return out
}

// Pick selects an instance for key (pass "" if the caller has no natural
// routing key — round robin, random, least-connections and
// least-response-time all ignore it). If sticky sessions are enabled and
// key has a healthy prior assignment, that assignment wins over the
// strategy.
func (lb *LoadBalancer) Pick(key string) (*ServiceInstance, error) {
	return lb.pick(key, nil)
}

// pick is Pick plus an optional exclude set, so Dispatch's retry loop can
// re-select while skipping instances that have already failed this call.
func (lb *LoadBalancer) pick(key string, exclude map[string]bool) (*ServiceInstance, error) {
	healthy := lb.healthyInstances()
	if len(exclude) > 0 {
		filtered := healthy[:0:0]
		for _, inst := range healthy {
			if !exclude[inst.ID] {
				filtered = append(filtered, inst)
			}
		}
		healthy = filtered
	}
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}

	if lb.sticky != nil && key != "" && len(exclude) == 0 {
		if id, ok := lb.sticky.get(key); ok {
			for _, inst := range healthy {
				if inst.ID == id {
					return inst, nil
				}
			}
		}
	}

	inst, err := lb.strategy.Pick(healthy, key)
	if err != nil {
		return nil, err
	}
	if lb.sticky != nil && key != "" && len(exclude) == 0 {
		lb.sticky.set(key, inst.ID)
	}
	return inst, nil
}

// Dispatch wraps op with connection-count and response-time bookkeeping
// around a Pick'd instance, the bookkeeping LeastConnections and
// LeastResponseTime depend on. On an instance-level failure (op returning a
// non-nil error), Dispatch retries up to maxRetries additional times with a
// fresh selection that excludes every instance that has already failed for
// this call, returning the last error once retries are exhausted.
func (lb *LoadBalancer) Dispatch(ctx context.Context, key string, op func(context.Context, *ServiceInstance) error) error {
	excluded := make(map[string]bool)
	var lastErr error

	for attempt := 0; attempt <= lb.maxRetries; attempt++ {
		inst, err := lb.pick(key, excluded)
		if err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		inst.IncrConns()
		start := time.Now()
		err = op(ctx, inst)
		inst.RecordResponseTime(float64(time.Since(start).Milliseconds()))
		inst.DecrConns()
		if err == nil {
			return nil
		}

		lastErr = err
		excluded[inst.ID] = true
	}
	return lastErr
}

// Call wraps fn in Dispatch and lifts the outcome into a mono.Mono, so a
// load-balanced call composes into a larger Mono/Flux pipeline instead of
// requiring a bare error-returning call at the edge of one. Free-standing
// because Go methods cannot introduce a new type parameter (mirrors
// breaker.Call).
func Call[T any](lb *LoadBalancer, key string, fn func(context.Context, *ServiceInstance) (T, error)) mono.Mono[T] {
	return mono.FromCallableCtx(func(ctx context.Context) (T, error) {
		var v T
		err := lb.Dispatch(ctx, key, func(ctx context.Context, inst *ServiceInstance) error {
			out, err := fn(ctx, inst)
			if err != nil {
				return err
			}
			v = out
			return nil
		})
		return v, err
	})
}

// recordProbeResult folds one health-check round's verdict into inst's
// health state and emits InstanceHealthChanged if it actually changed.
func (lb *LoadBalancer) recordProbeResult(inst *ServiceInstance, status health.Status) {
	success := status == health.StatusHealthy
	degraded := status == health.StatusDegraded
	changed, from, to := inst.recordProbe(success, degraded, lb.maxConsecutiveFailures)
	if !changed {
		return
	}
	lb.listener(event.Event{
		Kind:       event.InstanceHealthChanged,
		Timestamp:  time.Now(),
		InstanceID: inst.ID,
		FromHealth: from.String(),
		ToHealth:   to.String(),
	})
}
