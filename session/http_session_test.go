package session

import (
	"context"
	"testing"

	"github.com/bitrise-io/gcs-resumable-upload/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport lets tests script a sequence of canned results per method,
// mirroring the gmock expectation style of the reference test suite this
// package is grounded on.
type fakeTransport struct {
	createResults []status.Result[ResumableUploadResponse]
	chunkResults  []status.Result[ResumableUploadResponse]
	finalResults  []status.Result[ResumableUploadResponse]
	resetResults  []status.Result[ResumableUploadResponse]

	chunkCalls, finalCalls, resetCalls, createCalls int
}

func (f *fakeTransport) CreateSession(context.Context, ResumableUploadRequest) status.Result[ResumableUploadResponse] {
	r := f.createResults[f.createCalls]
	f.createCalls++
	return r
}

func (f *fakeTransport) UploadChunk(context.Context, UploadChunkRequest) status.Result[ResumableUploadResponse] {
	r := f.chunkResults[f.chunkCalls]
	f.chunkCalls++
	return r
}

func (f *fakeTransport) UploadFinalChunk(context.Context, UploadFinalChunkRequest) status.Result[ResumableUploadResponse] {
	r := f.finalResults[f.finalCalls]
	f.finalCalls++
	return r
}

func (f *fakeTransport) QueryResumableUpload(context.Context, QueryResumableUploadRequest) status.Result[ResumableUploadResponse] {
	r := f.resetResults[f.resetCalls]
	f.resetCalls++
	return r
}

func TestHTTPSession_UploadChunk_Success(t *testing.T) {
	chunk := make([]byte, ChunkSizeQuantum)
	tr := &fakeTransport{
		chunkResults: []status.Result[ResumableUploadResponse]{
			status.Ok(ResumableUploadResponse{UploadState: InProgress, LastCommittedByte: ChunkSizeQuantum - 1}),
		},
	}
	s := NewHTTPSession(context.Background(), tr, "https://example/session/1")

	r := s.UploadChunk(chunk)
	require.True(t, r.IsOK())
	assert.Equal(t, uint64(ChunkSizeQuantum), s.NextExpectedByte())
	assert.False(t, s.Done())
}

func TestHTTPSession_UploadChunk_RejectsBadSize(t *testing.T) {
	tr := &fakeTransport{}
	s := NewHTTPSession(context.Background(), tr, "https://example/session/1")

	r := s.UploadChunk([]byte("not a quantum multiple"))
	require.False(t, r.IsOK())
	assert.Equal(t, status.InvalidArgument, status.FromError(r.Error()).Code())
	assert.True(t, s.Done())
}

func TestHTTPSession_UploadFinalChunk_Done(t *testing.T) {
	tr := &fakeTransport{
		finalResults: []status.Result[ResumableUploadResponse]{
			status.Ok(ResumableUploadResponse{UploadState: Done, Payload: []byte(`{"name":"obj"}`)}),
		},
	}
	s := NewHTTPSession(context.Background(), tr, "https://example/session/1")

	r := s.UploadFinalChunk([]byte("tail"), 4)
	require.True(t, r.IsOK())
	assert.True(t, s.Done())

	// Further calls are pass-through to the stored terminal response.
	r2 := s.UploadFinalChunk([]byte("tail"), 4)
	assert.Equal(t, r, r2)
}

func TestHTTPSession_UploadChunk_PermanentError(t *testing.T) {
	chunk := make([]byte, ChunkSizeQuantum)
	tr := &fakeTransport{
		chunkResults: []status.Result[ResumableUploadResponse]{
			status.Err[ResumableUploadResponse](status.New(status.PermissionDenied, "forbidden")),
		},
	}
	s := NewHTTPSession(context.Background(), tr, "https://example/session/1")

	r := s.UploadChunk(chunk)
	require.False(t, r.IsOK())
	assert.True(t, s.Done())
	assert.Equal(t, status.PermissionDenied, status.FromError(r.Error()).Code())
}

func TestHTTPSession_UploadChunk_TransientDoesNotFail(t *testing.T) {
	chunk := make([]byte, ChunkSizeQuantum)
	tr := &fakeTransport{
		chunkResults: []status.Result[ResumableUploadResponse]{
			status.Err[ResumableUploadResponse](status.New(status.Unavailable, "try again")),
		},
	}
	s := NewHTTPSession(context.Background(), tr, "https://example/session/1")

	r := s.UploadChunk(chunk)
	require.False(t, r.IsOK())
	assert.False(t, s.Done())
	assert.Equal(t, uint64(0), s.NextExpectedByte())
}

func TestHTTPSession_ResetSession_UpdatesOffset(t *testing.T) {
	tr := &fakeTransport{
		resetResults: []status.Result[ResumableUploadResponse]{
			status.Ok(ResumableUploadResponse{UploadState: InProgress, LastCommittedByte: 511}),
		},
	}
	s := NewHTTPSession(context.Background(), tr, "https://example/session/1")

	r := s.ResetSession()
	require.True(t, r.IsOK())
	assert.Equal(t, uint64(512), s.NextExpectedByte())
}

func TestCreateHTTPSession(t *testing.T) {
	tr := &fakeTransport{
		createResults: []status.Result[ResumableUploadResponse]{
			status.Ok(ResumableUploadResponse{UploadSessionURL: "https://example/session/new"}),
		},
	}
	r := CreateHTTPSession(context.Background(), tr, ResumableUploadRequest{Bucket: "b", Object: "o"})
	require.True(t, r.IsOK())
	s := r.Must()
	assert.Equal(t, "https://example/session/new", s.SessionID())
}

func TestCreateHTTPSession_MissingLocation(t *testing.T) {
	tr := &fakeTransport{
		createResults: []status.Result[ResumableUploadResponse]{
			status.Ok(ResumableUploadResponse{}),
		},
	}
	r := CreateHTTPSession(context.Background(), tr, ResumableUploadRequest{Bucket: "b", Object: "o"})
	assert.False(t, r.IsOK())
}
