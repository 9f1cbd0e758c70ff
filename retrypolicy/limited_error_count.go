package retrypolicy

import "github.com/bitrise-io/gcs-resumable-upload/status"

// LimitedErrorCountRetryPolicy tolerates at most maxTransientErrors
// consecutive-or-not transient failures before giving up.
type LimitedErrorCountRetryPolicy struct {
	maxTransientErrors int
	failureCount       int
}

// NewLimitedErrorCountRetryPolicy returns a policy that tolerates up to
// maxTransientErrors transient failures across the lifetime of a single
// retrying session call.
func NewLimitedErrorCountRetryPolicy(maxTransientErrors int) *LimitedErrorCountRetryPolicy {
	return &LimitedErrorCountRetryPolicy{maxTransientErrors: maxTransientErrors}
}

// OnFailure implements RetryPolicy.
func (p *LimitedErrorCountRetryPolicy) OnFailure(status.Status) bool {
	p.failureCount++
	return p.failureCount <= p.maxTransientErrors
}

// IsExhausted implements RetryPolicy.
func (p *LimitedErrorCountRetryPolicy) IsExhausted() bool {
	return p.failureCount > p.maxTransientErrors
}

// Clone implements RetryPolicy.
func (p *LimitedErrorCountRetryPolicy) Clone() RetryPolicy {
	return &LimitedErrorCountRetryPolicy{maxTransientErrors: p.maxTransientErrors}
}
