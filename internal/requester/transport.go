package requester

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Transport is an http.RoundTripper that authenticates every request through
// an AuthManager before handing it to Base. Only requests to Host carry
// credentials, so a redirect to another host never receives the token.
type Transport struct {
	Base http.RoundTripper
	Auth AuthManager
	// Host is the API host[:port]. Empty means no request is authenticated.
	Host string
}

// NewTransport wraps base, or http.DefaultTransport when base is nil, and
// authenticates requests addressed to the host of baseURL
func NewTransport(base http.RoundTripper, auth AuthManager, baseURL string) *Transport {
	return &Transport{Base: base, Auth: auth, Host: hostOf(baseURL)}
}

// RoundTrip works on a clone, leaving the caller's request untouched
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}

	if t.Auth != nil && t.sameHost(out.URL) {
		if err := t.Auth.ApplyAuth(out.Context(), out); err != nil {
			if req.Body != nil {
				_ = req.Body.Close()
			}
			return nil, err
		}
	} else {
		out.Header.Del(AuthHeaderName)
	}

	return t.base().RoundTrip(out)
}

func (t *Transport) sameHost(u *url.URL) bool {
	return t.Host != "" && u != nil && strings.EqualFold(u.Host, t.Host)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
