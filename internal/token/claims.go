// Package token reads the claims of access tokens issued by the back-office API.
//
// Tokens are decoded without signature verification: the client only needs the
// expiry to decide whether to refresh, and the server remains the authority.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed is returned when the token is not a decodable JWT
	ErrMalformed = errors.New("malformed token")
	// ErrNoExpiry is returned when the token carries no exp claim
	ErrNoExpiry = errors.New("token has no exp claim")
)

// Claims holds the decoded payload of an access token
type Claims struct {
	jwtlib.RegisteredClaims
	UserID any `json:"user_id,omitempty"`
}

var parser = jwtlib.NewParser()

// Decode parses raw without verifying its signature. The result always has an expiry.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.RegisteredClaims.ExpiresAt == nil {
		return nil, ErrNoExpiry
	}
	return claims, nil
}

// ExpiresAt returns the exp claim as a time
func (c *Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// Expired reports whether the token is expired at now, or will be within margin
func (c *Claims) Expired(now time.Time, margin time.Duration) bool {
	if c.RegisteredClaims.ExpiresAt == nil {
		return true
	}
	return !now.Add(margin).Before(c.ExpiresAt())
}

// Expired decodes raw and reports whether it needs refreshing. Undecodable
// tokens count as expired.
func Expired(raw string, now time.Time, margin time.Duration) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return claims.Expired(now, margin)
}
