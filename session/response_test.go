package session

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resp(status int, headers map[string]string) *http.Response {
	h := make(http.Header)
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{StatusCode: status, Header: h}
}

func TestParseResumableUploadResponse_Done(t *testing.T) {
	r := ParseResumableUploadResponse(resp(200, nil), []byte(`{}`))
	assert.Equal(t, Done, r.UploadState)

	r = ParseResumableUploadResponse(resp(201, nil), nil)
	assert.Equal(t, Done, r.UploadState)
}

func TestParseResumableUploadResponse_InProgress(t *testing.T) {
	r := ParseResumableUploadResponse(resp(308, map[string]string{"Range": "bytes=0-2097151"}), nil)
	assert.Equal(t, InProgress, r.UploadState)
	assert.Equal(t, uint64(2097151), r.LastCommittedByte)
}

func TestParseResumableUploadResponse_Location(t *testing.T) {
	r := ParseResumableUploadResponse(resp(200, map[string]string{"Location": "https://example/session/abc"}), nil)
	assert.Equal(t, "https://example/session/abc", r.UploadSessionURL)
}

func TestParseResumableUploadResponse_NoRangeHeader(t *testing.T) {
	r := ParseResumableUploadResponse(resp(308, nil), nil)
	assert.Equal(t, uint64(0), r.LastCommittedByte)
}

func TestParseResumableUploadResponse_MalformedRange(t *testing.T) {
	cases := []string{
		"bytes=1-100",   // nonzero lower bound, the documented open question
		"bytes=0-100x",  // trailing non-digit
		"0-100",         // missing "bytes=" prefix
		"bytes=0-",      // no digits at all
		"BYTES=0-",      // case-insensitive prefix still needs digits after
	}
	for _, c := range cases {
		r := ParseResumableUploadResponse(resp(308, map[string]string{"Range": c}), nil)
		assert.Equal(t, uint64(0), r.LastCommittedByte, "case %q", c)
	}
}

func TestParseResumableUploadResponse_CaseInsensitivePrefix(t *testing.T) {
	r := ParseResumableUploadResponse(resp(308, map[string]string{"Range": "BYTES=0-512"}), nil)
	assert.Equal(t, uint64(512), r.LastCommittedByte)
}
