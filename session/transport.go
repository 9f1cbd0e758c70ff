package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bitrise-io/gcs-resumable-upload/status"
	"github.com/bitrise-io/gcs-resumable-upload/useragent"
)

// Transport is the wire-level contract the upload session is driven
// against. It has no object-read operation. It carries no retry logic of its own; a single failed
// attempt is returned as-is for the retrying decorator (or the caller) to
// act on.
type Transport interface {
	CreateSession(ctx context.Context, req ResumableUploadRequest) status.Result[ResumableUploadResponse]
	UploadChunk(ctx context.Context, req UploadChunkRequest) status.Result[ResumableUploadResponse]
	UploadFinalChunk(ctx context.Context, req UploadFinalChunkRequest) status.Result[ResumableUploadResponse]
	QueryResumableUpload(ctx context.Context, req QueryResumableUploadRequest) status.Result[ResumableUploadResponse]
}

// HTTPTransport is the concrete, single-attempt implementation of Transport.
// It deliberately performs no retries: that responsibility belongs entirely
// to the RetryingSession decorator.
type HTTPTransport struct {
	BaseURL    string
	HTTPClient *http.Client
	// AuthHeader, when non-nil, is called once per request to obtain the
	// current Authorization header value (e.g. from an OAuth2 token
	// source). Nil means no Authorization header is sent.
	AuthHeader func() (string, error)
}

// NewHTTPTransport returns a Transport posting to the given upload base URL
// (e.g. "https://storage.googleapis.com/upload/storage/v1") using client,
// or http.DefaultClient if client is nil.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{BaseURL: baseURL, HTTPClient: client}
}

func (t *HTTPTransport) CreateSession(ctx context.Context, req ResumableUploadRequest) status.Result[ResumableUploadResponse] {
	ro := buildOptions(req.Options)

	metadata := map[string]interface{}{"name": req.Object}
	if ro.contentEncoding != "" {
		metadata["contentEncoding"] = ro.contentEncoding
	}
	body, err := json.Marshal(metadata)
	if err != nil {
		return status.Err[ResumableUploadResponse](status.New(status.InvalidArgument, fmt.Sprintf("encode session metadata: %v", err)))
	}

	url := fmt.Sprintf("%s/b/%s/o?uploadType=resumable", t.BaseURL, req.Bucket)
	url = appendQueryOptions(url, ro)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return status.Err[ResumableUploadResponse](status.New(status.InvalidArgument, fmt.Sprintf("build create-session request: %v", err)))
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if req.ContentType != "" {
		httpReq.Header.Set("X-Upload-Content-Type", req.ContentType)
	}

	return t.do(httpReq)
}

func (t *HTTPTransport) UploadChunk(ctx context.Context, req UploadChunkRequest) status.Result[ResumableUploadResponse] {
	last := req.Offset + uint64(len(req.Payload)) - 1
	contentRange := fmt.Sprintf("bytes %d-%d/*", req.Offset, last)
	return t.put(ctx, req.SessionURL, req.Payload, contentRange)
}

func (t *HTTPTransport) UploadFinalChunk(ctx context.Context, req UploadFinalChunkRequest) status.Result[ResumableUploadResponse] {
	var contentRange string
	if len(req.Payload) == 0 {
		contentRange = fmt.Sprintf("bytes */%d", req.TotalSize)
	} else {
		last := req.Offset + uint64(len(req.Payload)) - 1
		contentRange = fmt.Sprintf("bytes %d-%d/%d", req.Offset, last, req.TotalSize)
	}
	return t.put(ctx, req.SessionURL, req.Payload, contentRange)
}

func (t *HTTPTransport) QueryResumableUpload(ctx context.Context, req QueryResumableUploadRequest) status.Result[ResumableUploadResponse] {
	return t.put(ctx, req.SessionURL, nil, "bytes */*")
}

func (t *HTTPTransport) put(ctx context.Context, url string, payload []byte, contentRange string) status.Result[ResumableUploadResponse] {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return status.Err[ResumableUploadResponse](status.New(status.InvalidArgument, fmt.Sprintf("build chunk request: %v", err)))
	}
	httpReq.Header.Set("Content-Range", contentRange)
	if payload != nil {
		httpReq.ContentLength = int64(len(payload))
	}

	return t.do(httpReq)
}

func (t *HTTPTransport) do(httpReq *http.Request) status.Result[ResumableUploadResponse] {
	httpReq.Header.Set("X-Goog-Api-Client", useragent.XGoogAPIClient())

	if t.AuthHeader != nil {
		auth, err := t.AuthHeader()
		if err != nil {
			return status.Err[ResumableUploadResponse](status.New(status.Unauthenticated, fmt.Sprintf("obtain auth header: %v", err)))
		}
		if auth != "" {
			httpReq.Header.Set("Authorization", auth)
		}
	}

	resp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return status.Err[ResumableUploadResponse](status.New(status.Unavailable, fmt.Sprintf("do request: %v", err)))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return status.Err[ResumableUploadResponse](status.New(status.Unavailable, fmt.Sprintf("read response body: %v", err)))
	}

	if code, transientOrPermanent, isErr := classifyStatus(resp.StatusCode); isErr {
		return status.Err[ResumableUploadResponse](status.New(code, fmt.Sprintf("%s: %s", transientOrPermanent, string(respBody))))
	}

	return status.Ok(ParseResumableUploadResponse(resp, respBody))
}

// classifyStatus implements the wire contract's error classification: 2xx
// and 308 are not errors (308 means "in progress"); 408/429/5xx are
// transient; other 4xx are permanent.
func classifyStatus(httpStatus int) (code status.Code, label string, isErr bool) {
	switch {
	case httpStatus >= 200 && httpStatus < 300:
		return status.OK, "", false
	case httpStatus == http.StatusPermanentRedirect: // 308
		return status.OK, "", false
	case httpStatus == http.StatusRequestTimeout, httpStatus == http.StatusTooManyRequests, httpStatus >= 500:
		return status.Unavailable, "transient error", true
	case httpStatus >= 400:
		return status.PermissionDenied, "permanent error", true
	default:
		return status.Unknown, "unexpected status", true
	}
}

func appendQueryOptions(url string, ro requestOptions) string {
	if ro.ifGenerationMatch != nil {
		url += fmt.Sprintf("&ifGenerationMatch=%d", *ro.ifGenerationMatch)
	}
	if ro.ifMetagenerationNotMatch != nil {
		url += fmt.Sprintf("&ifMetagenerationNotMatch=%d", *ro.ifMetagenerationNotMatch)
	}
	if ro.fields != "" {
		url += "&fields=" + ro.fields
	}
	if ro.userProject != "" {
		url += "&userProject=" + ro.userProject
	}
	if ro.predefinedACL != "" {
		url += "&predefinedAcl=" + ro.predefinedACL
	}
	return url
}
