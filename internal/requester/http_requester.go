package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/brizzai/backoffice/internal/config"
	"github.com/brizzai/backoffice/internal/logger"
	"github.com/brizzai/backoffice/internal/normalize"
	"github.com/brizzai/backoffice/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester is the back-office API client. Every call goes through the
// authenticating Transport except Login, which uses a plain client.
type HTTPRequester struct {
	client     *http.Client
	plain      *http.Client
	apiCfg     *config.APIConfig
	builder    *HTTPRequestBuilder
	store      session.Store
	normalizer *normalize.Normalizer
}

type HTTPRequesterParams struct {
	fx.In

	APIConfig   *config.APIConfig
	AuthManager AuthManager
	Store       session.Store
	Normalizer  *normalize.Normalizer `optional:"true"`
	// Base is the underlying transport; http.DefaultTransport when nil
	Base http.RoundTripper `optional:"true"`
}

// NewHTTPRequester creates a new HTTPRequester
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := params.APIConfig.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	normalizer := params.Normalizer
	if normalizer == nil {
		normalizer = normalize.New()
	}

	return &HTTPRequester{
		client: &http.Client{
			Timeout:   timeout,
			Transport: NewTransport(params.Base, params.AuthManager, params.APIConfig.BaseURL),
		},
		plain: &http.Client{
			Timeout:   timeout,
			Transport: params.Base,
		},
		apiCfg:     params.APIConfig,
		builder:    NewHTTPRequestBuilder(params.APIConfig),
		store:      params.Store,
		normalizer: normalizer,
	}
}

// SetTimeout sets the timeout for the HTTP clients
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
	r.plain.Timeout = timeout
}

// Do sends an authenticated request and returns the response whatever its status
func (r *HTTPRequester) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	return r.DoQuery(ctx, method, path, nil, body)
}

// DoQuery is Do with query parameters
func (r *HTTPRequester) DoQuery(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	req, err := r.builder.BuildRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	logger.Debug("Sending request", zap.String("method", req.Method), zap.String("url", req.URL))

	resp, err := r.execute(r.client, req)
	if err != nil {
		logger.Error("Failed to execute request", zap.String("url", req.URL), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// List fetches a list endpoint and normalizes its body. names are extra
// envelope keys to try, usually the resource name. Non-2xx answers are
// returned as *StatusError.
func (r *HTTPRequester) List(ctx context.Context, path string, names ...string) ([]any, error) {
	return r.ListQuery(ctx, path, nil, names...)
}

// ListQuery is List with query parameters
func (r *HTTPRequester) ListQuery(ctx context.Context, path string, query url.Values, names ...string) ([]any, error) {
	resp, err := r.DoQuery(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{
			Method:     http.MethodGet,
			URL:        joinURL(r.apiCfg.BaseURL, path),
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}
	return r.normalizer.NormalizeJSON(resp.Body, names...), nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *session.User `json:"user"`
}

// Login exchanges credentials for a token pair and starts a session
func (r *HTTPRequester) Login(ctx context.Context, username, password string) (*session.State, error) {
	req, err := r.builder.BuildRequest(ctx, http.MethodPost, r.apiCfg.LoginPath, nil, loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := r.execute(r.plain, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, &StatusError{
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		})
	}

	var lr loginResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", ErrLoginFailed, err)
	}
	if lr.Access == "" || lr.Refresh == "" {
		return nil, fmt.Errorf("%w: response is missing access or refresh token", ErrLoginFailed)
	}

	r.store.LoginSuccess(lr.User, lr.Access, lr.Refresh)
	logger.Info("Logged in", zap.String("username", username))

	state, _ := r.store.Get()
	return state, nil
}

// Logout ends the session
func (r *HTTPRequester) Logout() {
	r.store.Logout()
	logger.Info("Logged out")
}

// Session returns the current session
func (r *HTTPRequester) Session() (*session.State, bool) {
	return r.store.Get()
}

// execute performs the request and reads the whole body
func (r *HTTPRequester) execute(client *http.Client, req *Request) (*Response, error) {
	resp, err := client.Do(req.HttpRequest)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       buf.Bytes(),
		Headers:    resp.Header,
	}, nil
}
