package loadbalancer

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// HealthStatus is a ServiceInstance's health verdict, matching the
// {HEALTHY, UNHEALTHY, DEGRADED, UNKNOWN} vocabulary routing decisions are
// made against — a bare healthy/unhealthy bool can't express DEGRADED (still
// selectable, but under pressure) or UNKNOWN (no probe result yet).
type HealthStatus int

const (
	HealthUnknown HealthStatus = iota
	HealthHealthy
	HealthUnhealthy
	HealthDegraded
)

func (s HealthStatus) String() string {
	switch s {
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	case HealthDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// ServiceInstance is one backend target a LoadBalancer can route to. ID is
// assigned at construction and never reused, so it's safe to key sticky
// sessions and event.Event.InstanceID off it even across re-registration.
type ServiceInstance struct {
	ID      string
	Address string
	Weight  int

	activeConns atomic.Int64

	mu                  sync.Mutex
	status              HealthStatus
	consecutiveFailures int
	responseTimeMS      float64
	currentWeight       int // smooth weighted round-robin state (spec §6)
}

// NewServiceInstance builds a ServiceInstance at address with the given
// weight (weighted strategies treat weight <= 0 as 1). New instances start
// healthy; wire active health checking via LoadBalancer.StartHealthChecks
// to keep that current.
func NewServiceInstance(address string, weight int) *ServiceInstance {
	if weight <= 0 {
		weight = 1
	}
	return &ServiceInstance{
		ID:            uuid.NewString(),
		Address:       address,
		Weight:        weight,
		status:        HealthHealthy,
		currentWeight: 0,
	}
}

// Healthy reports whether the instance is currently selectable — HEALTHY or
// DEGRADED both route, only UNHEALTHY and UNKNOWN are excluded.
func (s *ServiceInstance) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == HealthHealthy || s.status == HealthDegraded
}

// Status returns the instance's current health verdict.
func (s *ServiceInstance) Status() HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// recordProbe folds one probe outcome into the instance's health state and
// reports whether the verdict changed. A success or a degraded result takes
// effect immediately and resets the failure streak; a failure only flips the
// instance to UNHEALTHY once consecutiveFailures reaches maxConsecutiveFailures
// (at least 1) — the asymmetric debounce spec §4.7 calls for: one success
// restores HEALTHY, but it takes a run of failures to declare UNHEALTHY.
func (s *ServiceInstance) recordProbe(success, degraded bool, maxConsecutiveFailures int) (changed bool, from, to HealthStatus) {
	if maxConsecutiveFailures <= 0 {
		maxConsecutiveFailures = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	from = s.status

	switch {
	case success:
		s.consecutiveFailures = 0
		s.status = HealthHealthy
	case degraded:
		s.consecutiveFailures = 0
		s.status = HealthDegraded
	default:
		s.consecutiveFailures++
		if s.consecutiveFailures >= maxConsecutiveFailures {
			s.status = HealthUnhealthy
		}
	}
	return from != s.status, from, s.status
}

// ActiveConns returns the current in-flight request count, maintained via
// IncrConns/DecrConns around each dispatched call.
func (s *ServiceInstance) ActiveConns() int64 { return s.activeConns.Load() }

// IncrConns records a dispatched call starting.
func (s *ServiceInstance) IncrConns() { s.activeConns.Add(1) }

// DecrConns records a dispatched call finishing.
func (s *ServiceInstance) DecrConns() { s.activeConns.Add(-1) }

// ResponseTimeMS returns the most recently recorded response latency.
func (s *ServiceInstance) ResponseTimeMS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responseTimeMS
}

// RecordResponseTime updates the instance's latency reading, consulted by
// the LeastResponseTime strategy.
func (s *ServiceInstance) RecordResponseTime(ms float64) {
	s.mu.Lock()
	s.responseTimeMS = ms
	s.mu.Unlock()
}
