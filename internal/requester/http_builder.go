package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/brizzai/backoffice/internal/config"
)

// HTTPRequestBuilder turns a method, path, query and body into an *http.Request
// against the configured API. It does not authenticate; the transport does.
type HTTPRequestBuilder struct {
	apiCfg *config.APIConfig
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(apiCfg *config.APIConfig) *HTTPRequestBuilder {
	return &HTTPRequestBuilder{apiCfg: apiCfg}
}

// BuildRequest builds a request. body is sent as JSON unless it is nil, an
// io.Reader or a []byte, which are sent as given.
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, method, path string, query url.Values, body any) (*Request, error) {
	if method == "" {
		method = http.MethodGet
	}

	target, err := b.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	reader, contentType, err := createRequestBody(body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	headers := make(map[string]string, len(b.apiCfg.Headers)+1)
	for k, v := range b.apiCfg.Headers {
		headers[k] = v
	}
	headers["Accept"] = "application/json"

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return &Request{
		URL:         target,
		Method:      method,
		Body:        reader,
		Headers:     headers,
		ContentType: contentType,
		HttpRequest: httpReq,
	}, nil
}

func (b *HTTPRequestBuilder) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(joinURL(b.apiCfg.BaseURL, path))
	if err != nil {
		return "", fmt.Errorf("invalid request URL: %w", err)
	}

	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func createRequestBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "application/json", nil
	default:
		jsonData, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(jsonData), "application/json", nil
	}
}
