package loadbalancer

import "errors"

var (
	// ErrNoHealthyInstance is returned when Pick has no healthy instance to
	// choose from.
	ErrNoHealthyInstance = errors.New("loadbalancer: no healthy instance available")

	// ErrInstanceNotFound is returned by operations on an unregistered
	// instance ID.
	ErrInstanceNotFound = errors.New("loadbalancer: instance not found")
)
