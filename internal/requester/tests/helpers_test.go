package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brizzai/backoffice/internal/requester"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fixedNow is the clock every test runs at
var fixedNow = time.Unix(1_750_000_000, 0)

func clock() time.Time { return fixedNow }

// accessToken mints an HS256 token expiring exp after fixedNow
func accessToken(t *testing.T, exp time.Duration) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(fixedNow.Add(exp)),
		IssuedAt:  jwtlib.NewNumericDate(fixedNow.Add(-time.Minute)),
		Subject:   "staff@agency.test",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

// fakeRefresher implements requester.Refresher for testing
type fakeRefresher struct {
	mu      sync.Mutex
	calls   atomic.Int32
	seen    []string
	pair    *requester.TokenPair
	err     error
	release chan struct{}
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*requester.TokenPair, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, refreshToken)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.pair, nil
}
