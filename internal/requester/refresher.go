package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brizzai/backoffice/internal/config"
)

// maxTokenBody bounds how much of an auth response is read
const maxTokenBody = 1 << 20

// Refresher exchanges a refresh token for a new token pair
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// HTTPRefresher calls the refresh endpoint with its own plain client, so the
// call never goes back through the authenticating transport
type HTTPRefresher struct {
	client *http.Client
	url    string
}

// NewHTTPRefresher creates a refresher for cfg.BaseURL + cfg.RefreshPath
func NewHTTPRefresher(cfg *config.APIConfig) *HTTPRefresher {
	return &HTTPRefresher{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    joinURL(cfg.BaseURL, cfg.RefreshPath),
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh posts {"refresh": token}. Anything but a 2xx carrying both tokens is an error wrapping ErrRefreshFailed.
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrRefreshFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d", ErrRefreshFailed, resp.StatusCode)
	}

	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", ErrRefreshFailed, err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, fmt.Errorf("%w: response is missing access or refresh token", ErrRefreshFailed)
	}
	return &pair, nil
}

// joinURL appends path to base. An absolute path URL is used as is.
func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
