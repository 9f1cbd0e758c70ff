package streambuf

import (
	"fmt"
	"io"

	"github.com/bitrise-io/gcs-resumable-upload/hashvalidator"
	"github.com/bitrise-io/gcs-resumable-upload/status"

	"github.com/bitrise-io/go-utils/v2/log"
)

// ReadSourceResult is returned by ObjectReadSource.Read: how many bytes
// landed in the caller's buffer, any response headers observed so far, and
// (only once the stream ends) the server-reported content hash.
type ReadSourceResult struct {
	BytesRead    int
	Headers      map[string]string
	Done         bool
	ReceivedHash string
}

// ObjectReadSource is the chunked transport this adapter pulls from. A
// single call may return fewer bytes than requested without being done.
type ObjectReadSource interface {
	Read(buf []byte) (ReadSourceResult, error)
	Close() error
}

const defaultPullBufferSize = 64 * 1024

// ReadBuffer adapts an ObjectReadSource into ordinary Read/Close semantics,
// feeding every byte observed through a hash validator and exposing the
// validator's verdict once the stream ends.
type ReadBuffer struct {
	source    ObjectReadSource
	validator hashvalidator.Validator
	logger    log.Logger

	headers      map[string]string
	receivedHash string

	pull    []byte
	pullPos int
	pullLen int

	eof     bool
	failure error
	status  status.Status
}

// NewReadBuffer returns a ReadBuffer pulling from source. If err is
// non-nil, the returned buffer starts in a closed/failed state regardless
// of source: all reads report end-of-stream and Status carries err.
func NewReadBuffer(source ObjectReadSource, validator hashvalidator.Validator, logger log.Logger, err error) *ReadBuffer {
	if validator == nil {
		validator = hashvalidator.NewNull()
	}
	if logger == nil {
		logger = log.NewLogger()
	}
	rb := &ReadBuffer{
		source:    source,
		validator: validator,
		logger:    logger,
		headers:   map[string]string{},
		pull:      make([]byte, defaultPullBufferSize),
	}
	if err != nil {
		rb.eof = true
		rb.failure = err
		rb.status = status.FromError(err)
	}
	return rb
}

// Read implements io.Reader. Requests at least as large as the internal
// pull buffer bypass it and read directly into p.
func (r *ReadBuffer) Read(p []byte) (int, error) {
	// A buffer constructed with an error is already at end-of-stream; only
	// a failure observed while reading is returned from Read.
	if r.failure != nil && !r.eof {
		return 0, r.failure
	}
	if len(p) == 0 {
		return 0, nil
	}

	if r.pullPos < r.pullLen {
		n := copy(p, r.pull[r.pullPos:r.pullLen])
		r.pullPos += n
		return n, nil
	}
	if r.eof {
		return 0, io.EOF
	}

	if len(p) >= len(r.pull) {
		return r.fill(p)
	}

	n, err := r.fill(r.pull)
	if err != nil && err != io.EOF {
		return 0, err
	}
	r.pullPos = 0
	r.pullLen = n
	if n == 0 {
		return 0, io.EOF
	}
	copied := copy(p, r.pull[:n])
	r.pullPos = copied
	return copied, nil
}

// fill issues one read against the source, feeds the bytes through the
// validator, and records headers/hash bookkeeping.
func (r *ReadBuffer) fill(buf []byte) (int, error) {
	result, err := r.source.Read(buf)
	if err != nil {
		r.failure = fmt.Errorf("read object range: %w", err)
		return 0, r.failure
	}

	if result.BytesRead > 0 {
		r.validator.Update(buf[:result.BytesRead])
	}
	for k, v := range result.Headers {
		r.headers[k] = v
	}
	if result.Done {
		r.eof = true
		r.receivedHash = result.ReceivedHash
	}

	if result.BytesRead == 0 && r.eof {
		return 0, io.EOF
	}
	return result.BytesRead, nil
}

// Headers returns the response headers accumulated so far.
func (r *ReadBuffer) Headers() map[string]string { return r.headers }

// Status returns the construction error for a buffer built in the failed
// state; otherwise it reports the validator's verdict once Close has run.
func (r *ReadBuffer) Status() status.Status { return r.status }

// Close drains the source to completion, finalizes the hash validator, and
// returns a non-nil error on a digest mismatch. It never panics on
// mismatch; the caller decides how to treat the returned status.
func (r *ReadBuffer) Close() error {
	if r.source == nil {
		return r.failure
	}

	drain := make([]byte, defaultPullBufferSize)
	for !r.eof {
		if _, err := r.Read(drain); err != nil {
			if err == io.EOF {
				break
			}
			break
		}
	}

	closeErr := r.source.Close()

	result := r.validator.Finish(r.receivedHash)
	if !result.Matches() {
		r.logger.Warnf("hash mismatch on read: received=%s computed=%s", result.Received, result.Computed)
		r.status = status.Newf(status.Unknown, "hash mismatch: received %s, computed %s", result.Received, result.Computed)
	}
	if closeErr != nil {
		return fmt.Errorf("close object read source: %w", closeErr)
	}
	if !result.Matches() {
		return r.status
	}
	return nil
}
