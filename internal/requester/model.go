package requester

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"

	// AuthHeaderPrefix is the prefix for the Authorization header value
	AuthHeaderPrefix = "Bearer "

	// RequestIDHeader carries a per-request id for correlating client and server logs
	RequestIDHeader = "X-Request-ID"
)

var (
	// ErrRefreshFailed is returned by a Refresher when no new token pair could be obtained
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrSessionExpired fails a request under the throw policy when its token could not be refreshed
	ErrSessionExpired = errors.New("session expired")

	// ErrLoginFailed is returned by Login when the API rejects the credentials or answers malformed
	ErrLoginFailed = errors.New("login failed")
)

// Request represents a fully built HTTP request
type Request struct {
	URL         string
	Method      string
	Body        io.Reader
	Headers     map[string]string
	ContentType string
	HttpRequest *http.Request
}

// Response represents an HTTP response with its body read in full
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// TokenPair is the body of a successful refresh
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Unauthorized reports a 401, which is what callers see after a failed refresh
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}
