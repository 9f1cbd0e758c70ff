// Package oauth2 turns a parsed service-account credential into a live
// Authorization header by signing and exchanging a JWT-bearer assertion,
// caching the resulting token until it nears expiry.
package oauth2

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bitrise-io/gcs-resumable-upload/credentials"
	"github.com/bitrise-io/gcs-resumable-upload/status"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
)

// cloudPlatformScope is used when the credential carries no explicit scope
// list.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// accessTokenLifetime is the documented lifetime requested for the
// exchanged access token.
const accessTokenLifetime = time.Hour

// expirySafetyMargin is subtracted from the server-reported expiry so a
// refresh happens slightly before the token would actually be rejected.
const expirySafetyMargin = 30 * time.Second

// nowFunc is a test seam.
var nowFunc = time.Now

// TokenSource produces an "Authorization" header value for a parsed
// service-account credential, refreshing it via the JWT-bearer grant as
// needed. It is safe for concurrent use: the cached token is guarded by a
// mutex because a single credential's TokenSource may be shared by several
// sessions.
type TokenSource struct {
	info   credentials.ServiceAccountCredentialsInfo
	client *retryablehttp.Client
	logger log.Logger

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewTokenSource returns a TokenSource for info. logger is used for the
// retryable HTTP client backing the token exchange; a nil logger gets a
// default one.
func NewTokenSource(info credentials.ServiceAccountCredentialsInfo, logger log.Logger) (*TokenSource, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	if info.PrivateKey == "" || info.ClientEmail == "" || info.TokenURI == "" {
		return nil, status.New(status.InvalidArgument, "service account credentials are incomplete")
	}
	return &TokenSource{
		info:   info,
		client: retryhttp.NewClient(logger),
		logger: logger,
	}, nil
}

// Header returns the current "Authorization" header value, refreshing the
// underlying access token if it has expired or is not yet cached.
func (t *TokenSource) Header() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cached != "" && nowFunc().Before(t.expiresAt) {
		return t.cached, nil
	}

	header, expiresAt, err := t.refresh()
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	t.cached = header
	t.expiresAt = expiresAt
	return header, nil
}

func (t *TokenSource) refresh() (string, time.Time, error) {
	assertion, err := t.buildAssertion()
	if err != nil {
		return "", time.Time{}, err
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := retryablehttp.NewRequest(http.MethodPost, t.info.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", time.Time{}, status.Newf(status.Unavailable, "exchange jwt-bearer assertion: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read token response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Time{}, status.Newf(status.Unauthenticated, "token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" || parsed.ExpiresIn == 0 || parsed.TokenType == "" {
		return "", time.Time{}, status.Newf(status.Unknown, "token response missing required fields: %s", string(body))
	}

	expiresAt := nowFunc().Add(time.Duration(parsed.ExpiresIn)*time.Second - expirySafetyMargin)
	return parsed.TokenType + " " + parsed.AccessToken, expiresAt, nil
}

func (t *TokenSource) buildAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(t.info.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	scope := cloudPlatformScope
	if len(t.info.Scopes) > 0 {
		scope = strings.Join(t.info.Scopes, ",")
	}

	now := nowFunc()
	claims := jwt.MapClaims{
		"iss":   t.info.ClientEmail,
		"scope": scope,
		"aud":   t.info.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(accessTokenLifetime).Unix(),
	}
	if t.info.Subject != "" {
		claims["sub"] = t.info.Subject
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if t.info.PrivateKeyID != "" {
		token.Header["kid"] = t.info.PrivateKeyID
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign jwt assertion: %w", err)
	}
	return signed, nil
}
