package requester

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brizzai/backoffice/internal/config"
	"github.com/brizzai/backoffice/internal/logger"
	"github.com/brizzai/backoffice/internal/session"
	"github.com/brizzai/backoffice/internal/token"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(ctx context.Context, req *http.Request) error
}

// SessionAuthManager stamps requests with the session's access token,
// refreshing it first when it is expired or about to expire.
//
// Concurrent requests holding the same expired token share one refresh call.
// When the refresh fails the session is cleared and, under the silent policy,
// the request goes out without credentials; under the throw policy ApplyAuth
// returns an error wrapping ErrSessionExpired.
type SessionAuthManager struct {
	store     session.Provider
	refresher Refresher
	policy    config.RefreshFailurePolicy
	margin    time.Duration
	now       func() time.Time
	group     singleflight.Group
}

// NewSessionAuthManager creates a SessionAuthManager
func NewSessionAuthManager(cfg *config.APIConfig, store session.Provider, refresher Refresher) *SessionAuthManager {
	policy := cfg.RefreshFailurePolicy
	if policy == "" {
		policy = config.PolicySilent
	}
	return &SessionAuthManager{
		store:     store,
		refresher: refresher,
		policy:    policy,
		margin:    cfg.ExpiryMargin,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for expiry checks
func (a *SessionAuthManager) SetClock(now func() time.Time) {
	a.now = now
}

// ApplyAuth adds the bearer token to req, refreshing it at most once
func (a *SessionAuthManager) ApplyAuth(ctx context.Context, req *http.Request) error {
	state, ok := a.store.Get()
	if !ok || state.Credentials.AccessToken == "" {
		return nil
	}

	access := state.Credentials.AccessToken
	if token.Expired(access, a.now(), a.margin) {
		refreshed, err := a.refresh(ctx, state.Credentials.RefreshToken)
		if err != nil {
			if a.policy == config.PolicyThrow {
				return fmt.Errorf("%w: %w", ErrSessionExpired, err)
			}
			logger.Debug("Sending request without credentials", zap.String("url", req.URL.Redacted()))
			return nil
		}
		access = refreshed.Credentials.AccessToken
	}

	req.Header.Set(AuthHeaderName, AuthHeaderPrefix+access)
	return nil
}

// refresh coalesces concurrent refreshes of the same token. The shared call is
// detached from the caller's cancellation so one abandoned request cannot fail
// the others; the refresher's client timeout still bounds it.
func (a *SessionAuthManager) refresh(ctx context.Context, refreshToken string) (*session.State, error) {
	v, err, shared := a.group.Do(refreshToken, func() (any, error) {
		return a.doRefresh(context.WithoutCancel(ctx), refreshToken)
	})
	if shared {
		logger.Debug("Joined in-flight token refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*session.State), nil
}

func (a *SessionAuthManager) doRefresh(ctx context.Context, used string) (*session.State, error) {
	if used == "" {
		a.clearIfCurrent(used)
		return nil, fmt.Errorf("%w: session has no refresh token", ErrRefreshFailed)
	}

	// Another request may have finished refreshing between our read and now
	current, ok := a.store.Get()
	if !ok {
		return nil, fmt.Errorf("%w: session ended before refresh", ErrRefreshFailed)
	}
	if current.Credentials.RefreshToken != used {
		return current, nil
	}

	logger.Info("Access token expired, refreshing")
	pair, err := a.refresher.Refresh(ctx, used)
	if err != nil {
		logger.Warn("Token refresh failed, clearing session", zap.Error(err))
		a.clearIfCurrent(used)
		return nil, err
	}

	// Only replace the session the refresh was made for. A login or logout
	// that landed while the call was in flight wins.
	current, ok = a.store.Get()
	if !ok {
		return nil, fmt.Errorf("%w: session ended during refresh", ErrRefreshFailed)
	}
	if current.Credentials.RefreshToken != used {
		return current, nil
	}

	next := current.WithCredentials(pair.Access, pair.Refresh)
	a.store.Set(next)
	logger.Info("Access token refreshed")
	return next, nil
}

func (a *SessionAuthManager) clearIfCurrent(used string) {
	current, ok := a.store.Get()
	if ok && current.Credentials.RefreshToken == used {
		a.store.Clear()
		logger.Info("Session cleared")
	}
}
