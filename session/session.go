package session

import (
	"github.com/bitrise-io/gcs-resumable-upload/status"
)

// ResumableUploadSession is the protocol state machine driven against a
// transport: four operations plus three observers. Implementations are not
// safe for concurrent use; a session is owned by a single writer.
type ResumableUploadSession interface {
	// UploadChunk commits a non-final chunk. data must be a positive
	// multiple of ChunkSizeQuantum.
	UploadChunk(data []byte) status.Result[ResumableUploadResponse]

	// UploadFinalChunk commits the last chunk and finalizes the object.
	// totalSize is the full object size, known only at this point.
	UploadFinalChunk(data []byte, totalSize uint64) status.Result[ResumableUploadResponse]

	// ResetSession queries the server for the current commit frontier and
	// updates internal state to match.
	ResetSession() status.Result[ResumableUploadResponse]

	// NextExpectedByte returns the offset of the next byte the session
	// expects to receive, i.e. committedBytes.
	NextExpectedByte() uint64

	// SessionID returns the session URL, or empty before one has been
	// assigned.
	SessionID() string

	// Done reports whether the session has reached a terminal state
	// (finalized or permanently failed).
	Done() bool

	// LastResponse returns the most recently stored result, success or
	// failure.
	LastResponse() status.Result[ResumableUploadResponse]
}

// state is the session's internal lifecycle state, not exposed directly;
// callers observe it only through Done() and LastResponse().
type state int

const (
	stateNew state = iota
	stateOpen
	stateTerminal
	stateFailed
)
