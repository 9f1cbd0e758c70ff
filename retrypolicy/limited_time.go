package retrypolicy

import (
	"time"

	"github.com/bitrise-io/gcs-resumable-upload/status"
)

// nowFunc is a seam for tests; production code always uses time.Now.
var nowFunc = time.Now

// LimitedTimeRetryPolicy tolerates transient failures until a wall-clock
// deadline, measured from the moment the policy is first used (not from
// construction, so a cloned-but-unused policy does not silently burn its
// budget while a session sits idle).
type LimitedTimeRetryPolicy struct {
	maxDuration time.Duration
	deadline    time.Time
	started     bool
}

// NewLimitedTimeRetryPolicy returns a policy that tolerates transient
// failures for up to maxDuration, starting from the first recorded failure.
func NewLimitedTimeRetryPolicy(maxDuration time.Duration) *LimitedTimeRetryPolicy {
	return &LimitedTimeRetryPolicy{maxDuration: maxDuration}
}

// OnFailure implements RetryPolicy.
func (p *LimitedTimeRetryPolicy) OnFailure(status.Status) bool {
	now := nowFunc()
	if !p.started {
		p.started = true
		p.deadline = now.Add(p.maxDuration)
	}
	return now.Before(p.deadline)
}

// IsExhausted implements RetryPolicy.
func (p *LimitedTimeRetryPolicy) IsExhausted() bool {
	if !p.started {
		return false
	}
	return !nowFunc().Before(p.deadline)
}

// Clone implements RetryPolicy.
func (p *LimitedTimeRetryPolicy) Clone() RetryPolicy {
	return &LimitedTimeRetryPolicy{maxDuration: p.maxDuration}
}
