package session

import (
	"context"
	"fmt"

	"github.com/bitrise-io/gcs-resumable-upload/status"
)

// httpSession is the base, non-retrying ResumableUploadSession
// implementation. It owns the state machine described by New/Open/
// Terminal/Failed and drives it against a Transport.
type httpSession struct {
	ctx       context.Context
	transport Transport

	sessionURL     string
	committedBytes uint64
	state          state
	lastResponse   status.Result[ResumableUploadResponse]
}

// NewHTTPSession returns a ResumableUploadSession that has already created
// (or been handed) a session URL and is ready to accept chunks.
func NewHTTPSession(ctx context.Context, transport Transport, sessionURL string) ResumableUploadSession {
	return &httpSession{
		ctx:        ctx,
		transport:  transport,
		sessionURL: sessionURL,
		state:      stateNew,
	}
}

// CreateHTTPSession creates a brand new resumable upload session against
// the transport and wraps it as a ResumableUploadSession.
func CreateHTTPSession(ctx context.Context, transport Transport, req ResumableUploadRequest) status.Result[ResumableUploadSession] {
	r := transport.CreateSession(ctx, req)
	resp, err := r.Get()
	if err != nil {
		return status.Err[ResumableUploadSession](err)
	}
	if resp.UploadSessionURL == "" {
		return status.Err[ResumableUploadSession](status.New(status.Unknown, "create session: response carried no Location header"))
	}
	return status.Ok[ResumableUploadSession](NewHTTPSession(ctx, transport, resp.UploadSessionURL))
}

func (s *httpSession) UploadChunk(data []byte) status.Result[ResumableUploadResponse] {
	if s.Done() {
		return s.lastResponse
	}
	if len(data) == 0 || len(data)%ChunkSizeQuantum != 0 {
		err := status.New(status.InvalidArgument, fmt.Sprintf("chunk size %d is not a positive multiple of %d", len(data), ChunkSizeQuantum))
		return s.fail(err)
	}

	r := s.transport.UploadChunk(s.ctx, UploadChunkRequest{
		SessionURL: s.sessionURL,
		Offset:     s.committedBytes,
		Payload:    data,
	})
	return s.observe(r, uint64(len(data)))
}

func (s *httpSession) UploadFinalChunk(data []byte, totalSize uint64) status.Result[ResumableUploadResponse] {
	if s.Done() {
		return s.lastResponse
	}

	r := s.transport.UploadFinalChunk(s.ctx, UploadFinalChunkRequest{
		SessionURL: s.sessionURL,
		Offset:     s.committedBytes,
		Payload:    data,
		TotalSize:  totalSize,
	})
	return s.observe(r, uint64(len(data)))
}

func (s *httpSession) ResetSession() status.Result[ResumableUploadResponse] {
	if s.Done() {
		return s.lastResponse
	}

	r := s.transport.QueryResumableUpload(s.ctx, QueryResumableUploadRequest{SessionURL: s.sessionURL})
	resp, err := r.Get()
	if err != nil {
		st := status.FromError(err)
		if !status.IsTransient(st.Code()) {
			return s.fail(st)
		}
		// Transient failures during reset are reported but do not change
		// state; the retrying decorator decides whether to try again.
		return r
	}

	// NextExpectedByte after a reset always equals LastCommittedByte + 1,
	// even when that is less than what this session previously believed;
	// the writer is responsible for resending any gap from its own buffer.
	s.committedBytes = resp.LastCommittedByte + 1
	s.lastResponse = status.Ok(resp)
	if resp.UploadState == Done {
		s.state = stateTerminal
	} else if s.state == stateNew {
		s.state = stateOpen
	}
	return s.lastResponse
}

func (s *httpSession) NextExpectedByte() uint64 { return s.committedBytes }

func (s *httpSession) SessionID() string { return s.sessionURL }

func (s *httpSession) Done() bool { return s.state == stateTerminal || s.state == stateFailed }

func (s *httpSession) LastResponse() status.Result[ResumableUploadResponse] { return s.lastResponse }

// observe applies a transport result to the state machine: success advances
// committedBytes and possibly transitions to Terminal; permanent failure
// transitions to Failed; transient failure leaves state unchanged for the
// caller (or its retry decorator) to act on.
func (s *httpSession) observe(r status.Result[ResumableUploadResponse], sent uint64) status.Result[ResumableUploadResponse] {
	resp, err := r.Get()
	if err != nil {
		st := status.FromError(err)
		if !status.IsTransient(st.Code()) {
			return s.fail(st)
		}
		s.lastResponse = r
		return r
	}

	s.committedBytes += sent
	s.lastResponse = status.Ok(resp)
	if s.state == stateNew {
		s.state = stateOpen
	}
	if resp.UploadState == Done {
		s.state = stateTerminal
	}
	return s.lastResponse
}

func (s *httpSession) fail(st status.Status) status.Result[ResumableUploadResponse] {
	s.state = stateFailed
	s.lastResponse = status.Err[ResumableUploadResponse](st)
	return s.lastResponse
}
