package session

import (
	"time"

	"github.com/bitrise-io/gcs-resumable-upload/retrypolicy"
	"github.com/bitrise-io/gcs-resumable-upload/status"

	"github.com/bitrise-io/go-utils/v2/log"
)

// sleepFunc is a test seam so the retry-exhaustion tests don't actually
// wait out backoff delays.
var sleepFunc = time.Sleep

// RetryingSession decorates a ResumableUploadSession with a retry policy
// and a backoff policy, re-driving chunk attempts through a session reset
// on transient failure. Both policies are shared across chunk attempts and
// reset attempts within the same call, per the retry budget's single-pool
// semantics.
type RetryingSession struct {
	inner   ResumableUploadSession
	retry   retrypolicy.RetryPolicy
	backoff retrypolicy.BackoffPolicy
	logger  log.Logger
}

// NewRetryingSession wraps inner with retry and backoff policies. Each
// decorator call clones both policies so repeated calls on the same
// RetryingSession start with a fresh budget, matching the "per user call"
// scope described for the retry loop.
func NewRetryingSession(inner ResumableUploadSession, retry retrypolicy.RetryPolicy, backoff retrypolicy.BackoffPolicy, logger log.Logger) *RetryingSession {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &RetryingSession{inner: inner, retry: retry, backoff: backoff, logger: logger}
}

func (s *RetryingSession) UploadChunk(data []byte) status.Result[ResumableUploadResponse] {
	return s.call(data, 0, false)
}

func (s *RetryingSession) UploadFinalChunk(data []byte, totalSize uint64) status.Result[ResumableUploadResponse] {
	return s.call(data, totalSize, true)
}

// call implements the shared algorithm for UploadChunk and
// UploadFinalChunk: attempt the operation; on transient failure, spend the
// shared retry budget alternating between backoff sleeps and session
// resets, trimming the payload forward to the offset the reset reports,
// until success, a permanent error, or budget exhaustion.
func (s *RetryingSession) call(data []byte, totalSize uint64, final bool) status.Result[ResumableUploadResponse] {
	retry := s.retry.Clone()
	backoff := s.backoff.Clone()

	offset := s.inner.NextExpectedByte()
	payload := data

	for {
		var r status.Result[ResumableUploadResponse]
		if final {
			r = s.inner.UploadFinalChunk(payload, totalSize)
		} else {
			r = s.inner.UploadChunk(payload)
		}

		if r.IsOK() {
			return r
		}

		st := status.FromError(r.Error())
		if !status.IsTransient(st.Code()) {
			return r
		}

		s.logger.Warnf("resumable upload: transient error, will retry: %v", st)

		if !retry.OnFailure(st) {
			return status.Err[ResumableUploadResponse](st.WithMessage("Retry policy exhausted: " + st.Message()))
		}
		sleepFunc(backoff.OnCompletion())

		// Reset loop: shares the same retry/backoff budget.
		newOffset, resetStatus, done := s.resetUntilRecovered(retry, backoff)
		if done {
			return resetStatus
		}

		advanced := newOffset - offset
		if advanced > uint64(len(payload)) {
			advanced = uint64(len(payload))
		}
		payload = payload[advanced:]
		offset = newOffset

		if len(payload) == 0 && !final {
			// The reset reported the entire chunk already committed; no
			// bytes remain to resend for this call.
			return s.inner.LastResponse()
		}
	}
}

// resetUntilRecovered drives ResetSession against the shared retry/backoff
// budget until it succeeds or the call must return. The second return value
// is only meaningful when done is true.
func (s *RetryingSession) resetUntilRecovered(retry retrypolicy.RetryPolicy, backoff retrypolicy.BackoffPolicy) (newOffset uint64, result status.Result[ResumableUploadResponse], done bool) {
	for {
		rr := s.inner.ResetSession()
		if rr.IsOK() {
			return s.inner.NextExpectedByte(), status.Result[ResumableUploadResponse]{}, false
		}

		st := status.FromError(rr.Error())
		if !status.IsTransient(st.Code()) {
			return 0, rr, true
		}

		s.logger.Warnf("resumable upload: transient error during reset, will retry: %v", st)

		if !retry.OnFailure(st) {
			return 0, status.Err[ResumableUploadResponse](st.WithMessage("Retry policy exhausted: " + st.Message())), true
		}
		sleepFunc(backoff.OnCompletion())
	}
}

func (s *RetryingSession) ResetSession() status.Result[ResumableUploadResponse] {
	return s.inner.ResetSession()
}

func (s *RetryingSession) NextExpectedByte() uint64 { return s.inner.NextExpectedByte() }

func (s *RetryingSession) SessionID() string { return s.inner.SessionID() }

func (s *RetryingSession) Done() bool { return s.inner.Done() }

func (s *RetryingSession) LastResponse() status.Result[ResumableUploadResponse] { return s.inner.LastResponse() }
