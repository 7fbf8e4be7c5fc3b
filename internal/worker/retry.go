package worker

import (
	"math"
	"time"
)

// RetryPolicy shapes redelivery pacing: delays grow geometrically from
// InitialDelay and are capped at MaxDelay. MaxRetries is the attempt budget
// the worker enforces; NextDelay only computes the wait.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns the wait before the given delivery attempt (1-based).
// Unset fields fall back to a one-second base and a doubling factor.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := p.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	next := time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	if p.MaxDelay > 0 && next > p.MaxDelay {
		next = p.MaxDelay
	}
	if next <= 0 {
		// float overflow on large attempt counts wraps negative
		next = p.MaxDelay
		if next <= 0 {
			next = time.Second
		}
	}
	return next
}
