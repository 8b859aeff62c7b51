package breaker

import "errors"

// ErrOpen is returned by Execute while the circuit is open or while the
// half-open probe quota is exhausted.
var ErrOpen = errors.New("breaker: circuit is open")
