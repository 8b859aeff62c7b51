// Package backoff computes retry delays, shared by mono.Retry and
// flux.Retry so both operators grow their delay the same way. Grounded on
// the teacher's resilience.Retry.calculateDelay (exponential/linear/constant
// strategies with capped, jittered output).
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy selects how delay grows across attempts.
type Strategy int

const (
	// Constant uses the same delay every attempt.
	Constant Strategy = iota
	// Linear multiplies delay by the attempt number.
	Linear
	// Exponential multiplies delay by multiplier^(attempt-1).
	Exponential
)

// Policy configures delay growth between retry attempts.
type Policy struct {
	Strategy   Strategy
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64 // Exponential only; defaults to 2.0 if <= 0
	Jitter     bool    // adds up to 25% random jitter
}

// Delay returns the delay to wait before attempt (1-indexed: attempt=1 is
// the delay before the first retry, i.e. after the initial call failed).
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2.0
	}

	var delay time.Duration
	switch p.Strategy {
	case Linear:
		delay = p.Initial * time.Duration(attempt)
	case Exponential:
		scale := math.Pow(mult, float64(attempt-1))
		delay = time.Duration(float64(p.Initial) * scale)
	default: // Constant
		delay = p.Initial
	}

	if p.Max > 0 && delay > p.Max {
		delay = p.Max
	}

	if p.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay/4) + 1))
	}

	return delay
}
