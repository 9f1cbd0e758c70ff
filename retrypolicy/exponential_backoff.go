package retrypolicy

import "time"

// ExponentialBackoffPolicy generates a bounded exponential backoff schedule:
// initialDelay, initialDelay*scaling, initialDelay*scaling^2, ... capped at
// maxDelay.
type ExponentialBackoffPolicy struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	scaling      float64

	current time.Duration
}

// NewExponentialBackoffPolicy returns a policy starting at initialDelay,
// growing by scaling each time OnCompletion is called, never exceeding
// maxDelay.
func NewExponentialBackoffPolicy(initialDelay, maxDelay time.Duration, scaling float64) *ExponentialBackoffPolicy {
	return &ExponentialBackoffPolicy{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		scaling:      scaling,
	}
}

// OnCompletion implements BackoffPolicy.
func (p *ExponentialBackoffPolicy) OnCompletion() time.Duration {
	if p.current == 0 {
		p.current = p.initialDelay
	}
	delay := p.current
	if delay > p.maxDelay {
		delay = p.maxDelay
	}

	next := time.Duration(float64(p.current) * p.scaling)
	if next > p.maxDelay {
		next = p.maxDelay
	}
	p.current = next

	return delay
}

// Clone implements BackoffPolicy.
func (p *ExponentialBackoffPolicy) Clone() BackoffPolicy {
	return &ExponentialBackoffPolicy{
		initialDelay: p.initialDelay,
		maxDelay:     p.maxDelay,
		scaling:      p.scaling,
	}
}
