// Package retrypolicy provides the cloneable retry-exhaustion and backoff
// policies the retrying session composes with the resumable upload state
// machine.
package retrypolicy

import (
	"time"

	"github.com/bitrise-io/gcs-resumable-upload/status"
)

// RetryPolicy decides, for a sequence of transient failures observed while
// driving a single user call, whether another attempt is still permitted.
// The retrying session calls OnFailure only for failures it has already
// classified as transient; permanent failures never reach the policy.
//
// A single RetryPolicy instance is shared across both chunk attempts and
// reset attempts within one user call, so the retry budget it enforces
// covers both.
type RetryPolicy interface {
	// OnFailure records a transient failure and reports whether the caller
	// may make another attempt. Once it returns false the policy is
	// exhausted and will keep returning false.
	OnFailure(s status.Status) bool

	// IsExhausted reports whether the policy has no budget left, without
	// recording a new failure.
	IsExhausted() bool

	// Clone returns an independent copy of the policy, with the same
	// configuration and a reset accounting state.
	Clone() RetryPolicy
}

// BackoffPolicy generates the delay to sleep between retry attempts.
type BackoffPolicy interface {
	// OnCompletion returns the duration to wait before the next attempt,
	// and advances the policy's internal schedule.
	OnCompletion() time.Duration

	// Clone returns an independent copy of the policy, rewound to its
	// initial delay.
	Clone() BackoffPolicy
}
