package loadbalancer

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Strategy picks one instance out of healthy, given a routing key (empty
// if the caller has none — strategies that don't use a key ignore it).
type Strategy interface {
	Pick(healthy []*ServiceInstance, key string) (*ServiceInstance, error)
}

// RoundRobin cycles through healthy instances in order.
type RoundRobin struct {
	counter atomic.Uint64
}

func (r *RoundRobin) Pick(healthy []*ServiceInstance, _ string) (*ServiceInstance, error) {
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}
	i := r.counter.Add(1) - 1
	return healthy[i%uint64(len(healthy))], nil
}

// WeightedRoundRobin implements nginx's smooth weighted round-robin: every
// pick increases each instance's currentWeight by its own Weight, returns
// the instance with the highest currentWeight, then decreases that
// instance's currentWeight by the sum of all weights. This spreads picks
// proportionally to weight without the bursty runs a naive weighted
// round-robin produces.
type WeightedRoundRobin struct {
	mu sync.Mutex
}

func (w *WeightedRoundRobin) Pick(healthy []*ServiceInstance, _ string) (*ServiceInstance, error) {
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	total := 0
	weights := make([]int, len(healthy))
	for i, inst := range healthy {
		inst.mu.Lock()
		inst.currentWeight += inst.Weight
		weights[i] = inst.currentWeight
		total += inst.Weight
		inst.mu.Unlock()
	}

	bestIdx := 0
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[bestIdx] {
			bestIdx = i
		}
	}

	best := healthy[bestIdx]
	best.mu.Lock()
	best.currentWeight -= total
	best.mu.Unlock()
	return best, nil
}

// Random picks a uniformly random healthy instance.
type Random struct{}

func (Random) Pick(healthy []*ServiceInstance, _ string) (*ServiceInstance, error) {
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}
	return healthy[rand.IntN(len(healthy))], nil
}

// LeastConnections picks the healthy instance with the fewest active
// connections.
type LeastConnections struct{}

func (LeastConnections) Pick(healthy []*ServiceInstance, _ string) (*ServiceInstance, error) {
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}
	best := healthy[0]
	for _, inst := range healthy[1:] {
		if inst.ActiveConns() < best.ActiveConns() {
			best = inst
		}
	}
	return best, nil
}

// LeastResponseTime picks the healthy instance with the lowest recorded
// response latency.
type LeastResponseTime struct{}

func (LeastResponseTime) Pick(healthy []*ServiceInstance, _ string) (*ServiceInstance, error) {
	if len(healthy) == 0 {
		return nil, ErrNoHealthyInstance
	}
	best := healthy[0]
	for _, inst := range healthy[1:] {
		if inst.ResponseTimeMS() < best.ResponseTimeMS() {
			best = inst
		}
	}
	return best, nil
}
