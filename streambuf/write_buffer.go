// Package streambuf adapts the quantum-aligned resumable upload session and
// the chunked read source to ordinary byte-oriented io.Writer and io.Reader
// surfaces with a Close step, the way the teacher's chunk uploader adapts HTTP
// chunk semantics to a provider interface.
package streambuf

import (
	"fmt"

	"github.com/bitrise-io/gcs-resumable-upload/hashvalidator"
	"github.com/bitrise-io/gcs-resumable-upload/session"
	"github.com/bitrise-io/gcs-resumable-upload/status"

	"github.com/bitrise-io/go-utils/v2/log"
	units "github.com/docker/go-units"
)

// Config configures a WriteBuffer.
type Config struct {
	// MaxBufferSize is the internal buffer capacity. It must be a positive
	// multiple of session.ChunkSizeQuantum.
	MaxBufferSize int
	Logger        log.Logger
	Validator     hashvalidator.Validator
}

// DefaultConfig returns a Config with a single-quantum buffer and hashing
// disabled.
func DefaultConfig() Config {
	return Config{
		MaxBufferSize: session.ChunkSizeQuantum,
		Logger:        log.NewLogger(),
		Validator:     hashvalidator.NewNull(),
	}
}

// WriteBuffer turns arbitrary-size Write calls into quantum-aligned
// UploadChunk commits against a session, flushing a final (possibly
// shorter) chunk on Close.
type WriteBuffer struct {
	session   session.ResumableUploadSession
	validator hashvalidator.Validator
	logger    log.Logger

	maxBufferSize int
	buf           []byte
	totalAppended uint64
	totalCommitted uint64

	failure error
	closed  bool
}

// NewWriteBuffer returns a WriteBuffer committing chunks through s.
func NewWriteBuffer(s session.ResumableUploadSession, config Config) (*WriteBuffer, error) {
	if config.MaxBufferSize <= 0 || config.MaxBufferSize%session.ChunkSizeQuantum != 0 {
		return nil, fmt.Errorf("buffer size %d is not a positive multiple of the chunk quantum", config.MaxBufferSize)
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	validator := config.Validator
	if validator == nil {
		validator = hashvalidator.NewNull()
	}
	return &WriteBuffer{
		session:       s,
		validator:     validator,
		logger:        logger,
		maxBufferSize: config.MaxBufferSize,
		buf:           make([]byte, 0, config.MaxBufferSize),
	}, nil
}

// Write buffers p, flushing as many complete chunk quanta as are available
// once the buffer has filled to at least one quantum. It implements
// io.Writer.
func (w *WriteBuffer) Write(p []byte) (int, error) {
	if w.failure != nil {
		return 0, w.failure
	}
	if w.closed {
		return 0, fmt.Errorf("write to closed upload buffer")
	}

	n := len(p)
	w.buf = append(w.buf, p...)
	w.totalAppended += uint64(n)

	if err := w.flushFullQuanta(); err != nil {
		return 0, err
	}
	return n, nil
}

// Sync commits every full quantum currently buffered; it never sends a
// partial chunk.
func (w *WriteBuffer) Sync() error {
	if w.failure != nil {
		return w.failure
	}
	return w.flushFullQuanta()
}

func (w *WriteBuffer) flushFullQuanta() error {
	for len(w.buf) >= session.ChunkSizeQuantum {
		n := (len(w.buf) / session.ChunkSizeQuantum) * session.ChunkSizeQuantum
		if n > w.maxBufferSize {
			n = w.maxBufferSize - (w.maxBufferSize % session.ChunkSizeQuantum)
		}
		chunk := w.buf[:n]

		w.logger.Debugf("committing chunk of %s at offset %d", units.HumanSizeWithPrecision(float64(n), 0), w.totalCommitted)

		r := w.session.UploadChunk(chunk)
		if _, err := r.Get(); err != nil {
			w.failure = fmt.Errorf("commit chunk: %w", err)
			return w.failure
		}

		w.validator.Update(chunk)
		w.totalCommitted += uint64(n)
		w.buf = append(w.buf[:0], w.buf[n:]...)
	}
	return nil
}

// Close issues the final chunk with the buffer's residual bytes, validates
// the server-reported hash against what was committed, and marks the buffer
// closed. It returns the final response alongside the error, so WriteBuffer
// does not satisfy io.Closer.
func (w *WriteBuffer) Close() (session.ResumableUploadResponse, error) {
	if w.failure != nil {
		return session.ResumableUploadResponse{}, w.failure
	}
	if w.closed {
		resp, err := w.session.LastResponse().Get()
		return resp, err
	}
	w.closed = true

	remaining := append([]byte(nil), w.buf...)
	total := w.totalCommitted + uint64(len(remaining))

	r := w.session.UploadFinalChunk(remaining, total)
	resp, err := r.Get()
	if err != nil {
		w.failure = fmt.Errorf("commit final chunk: %w", err)
		return session.ResumableUploadResponse{}, w.failure
	}

	w.validator.Update(remaining)
	w.totalCommitted += uint64(len(remaining))
	w.buf = nil

	hashResult := w.validator.Finish(extractHash(resp.Payload))
	if !hashResult.Matches() {
		w.logger.Warnf("hash mismatch finalizing upload: received=%s computed=%s", hashResult.Received, hashResult.Computed)
		w.failure = status.Newf(status.Unknown, "hash mismatch: received %s, computed %s", hashResult.Received, hashResult.Computed)
		return resp, w.failure
	}

	return resp, nil
}

// IsOpen reports whether Close has not yet been called and no commit has
// failed.
func (w *WriteBuffer) IsOpen() bool {
	return !w.closed && w.failure == nil
}

// extractHash is a narrow best-effort extraction of the "md5Hash" field from a
// finalized object's JSON metadata payload, used only to hand a candidate
// digest to the validator; callers that need precise metadata parsing
// should parse resp.Payload themselves.
func extractHash(payload []byte) string {
	const marker = `"md5Hash":"`
	idx := indexOf(payload, marker)
	if idx < 0 {
		return ""
	}
	start := idx + len(marker)
	end := indexOfByte(payload[start:], '"')
	if end < 0 {
		return ""
	}
	return string(payload[start : start+end])
}

func indexOf(haystack []byte, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == needle {
			return i
		}
	}
	return -1
}

func indexOfByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
