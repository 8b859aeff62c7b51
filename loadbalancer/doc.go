// Package loadbalancer implements client-side load balancing over a pool
// of ServiceInstance targets: round-robin, a smooth weighted round-robin
// (nginx's algorithm), random, least-connections, least-response-time, and
// consistent hashing with virtual nodes and sticky sessions.
//
// Active health checking reuses the teacher's health.Checker/
// health.Aggregator (probing instances concurrently the way
// health.Aggregator already does for composite checks, generalized from
// "one process's subsystems" to "one instance per pool member"), and
// state transitions are reported through an event.Listener, the same
// cross-cutting hook breaker uses for circuit transitions. Each
// ServiceInstance carries a HEALTHY/UNHEALTHY/DEGRADED/UNKNOWN status rather
// than a bare bool, debounced asymmetrically: a run of
// max_consecutive_failures probe failures is required to mark an instance
// UNHEALTHY, but a single success restores it immediately.
//
// Dispatch retries an instance-level failure up to max_retries times, each
// retry re-selecting while excluding every instance that has already failed
// for that call, and Call lifts a Dispatch'd operation into a mono.Mono so
// it composes into a larger Mono/Flux pipeline the same way breaker.Call
// does for circuit-guarded calls.
package loadbalancer
