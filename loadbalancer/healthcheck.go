package loadbalancer

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/reactorcore/health"
)

// ProbeFunc checks whether a single instance is reachable. It is the
// loadbalancer-facing shape of health.CheckerFunc's fn, scoped to one
// ServiceInstance rather than one named subsystem.
type ProbeFunc func(ctx context.Context, inst *ServiceInstance) health.Result

// StartHealthChecks runs probe against every registered instance every
// interval, in parallel, updating each instance's health and emitting
// InstanceHealthChanged on flips — the same parallel-fan-out shape as
// health.Aggregator.Check, specialized to a fixed-ID worklist drawn from
// the LoadBalancer's own pool instead of an externally supplied Checker
// slice. Returns a stop function; calling it halts future rounds but does
// not wait for an in-flight round to finish.
func (lb *LoadBalancer) StartHealthChecks(ctx context.Context, interval time.Duration, probe ProbeFunc) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lb.runHealthRound(ctx, probe)
			}
		}
	}()
	return cancel
}

// AggregatorProbe adapts a per-instance health.Aggregator into a ProbeFunc,
// so a round of health checks runs every registered Checker for that
// instance (database ping, dependency reachability, resource pressure) and
// folds them into one verdict via Aggregator.OverallStatus, instead of a
// single bare ping.
func AggregatorProbe(aggFor func(inst *ServiceInstance) *health.Aggregator) ProbeFunc {
	return func(ctx context.Context, inst *ServiceInstance) health.Result {
		agg := aggFor(inst)
		if agg == nil {
			return health.Healthy("no aggregator configured")
		}
		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)
		return health.Result{Status: status, Message: status.String(), Timestamp: time.Now()}
	}
}

func (lb *LoadBalancer) runHealthRound(ctx context.Context, probe ProbeFunc) {
	instances := lb.Instances()
	var wg sync.WaitGroup
	wg.Add(len(instances))
	for _, inst := range instances {
		inst := inst
		go func() {
			defer wg.Done()
			result := probe(ctx, inst)
			lb.recordProbeResult(inst, result.Status)
		}()
	}
	wg.Wait()
}
