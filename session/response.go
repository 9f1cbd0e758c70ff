// Package session implements the resumable-upload protocol state machine:
// a base HTTP-backed session, a retrying decorator, and the request/response
// types they share.
package session

import (
	"net/http"
	"strconv"
	"strings"
)

// UploadState reports whether an upload session has reached its terminal,
// server-finalized state.
type UploadState int

const (
	// InProgress means the server has accepted bytes but has not finalized
	// the object.
	InProgress UploadState = iota
	// Done means the object has been created; status was 200 or 201.
	Done
)

func (s UploadState) String() string {
	if s == Done {
		return "Done"
	}
	return "InProgress"
}

// ChunkSizeQuantum is the fixed granularity resumable chunks must align to.
// All non-final UploadChunk payloads must be a positive multiple of this
// value; GCS documents 256 KiB as the required quantum.
const ChunkSizeQuantum = 256 * 1024

// ResumableUploadResponse is the result of any session operation: a chunk
// commit, a final commit, or a reset query.
type ResumableUploadResponse struct {
	// UploadSessionURL is populated from the Location header on session
	// creation; empty for every other response.
	UploadSessionURL string
	// LastCommittedByte is the inclusive index of the last byte the server
	// has committed, or 0 when there has been no progress or the Range
	// header could not be parsed.
	LastCommittedByte uint64
	// Payload carries the raw response body, used for diagnostics and for
	// parsing finalized object metadata.
	Payload []byte
	// UploadState is Done iff the HTTP status was 200 or 201.
	UploadState UploadState
}

// ParseResumableUploadResponse builds a ResumableUploadResponse from a raw
// HTTP response, following the bit-exact parsing rules in the wire
// contract: UploadState from status code, UploadSessionURL from Location,
// and LastCommittedByte from a "bytes=0-<digits>" Range header only.
func ParseResumableUploadResponse(resp *http.Response, body []byte) ResumableUploadResponse {
	r := ResumableUploadResponse{
		Payload: body,
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		r.UploadState = Done
	default:
		r.UploadState = InProgress
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		r.UploadSessionURL = loc
	}

	if rng := resp.Header.Get("Range"); rng != "" {
		if n, ok := parseRangeUpperBound(rng); ok {
			r.LastCommittedByte = n
		}
	}

	return r
}

// parseRangeUpperBound recognizes exactly "bytes=0-<digits>" (case
// insensitive on the "bytes=" literal). Any other shape, including a
// nonzero lower bound, yields (0, false); this preserves the original
// implementation's behavior and is an intentionally unresolved open
// question rather than a guess at broader Range semantics.
func parseRangeUpperBound(header string) (uint64, bool) {
	const prefix = "bytes=0-"
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return 0, false
	}
	digits := header[len(prefix):]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
