package attendsdk

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can read out of an access token. The client
// holds no signing key, so nothing here is verified; use it for display and
// expiry hints only.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Role as embedded by the service, when present
	Role string `json:"role,omitempty"`
}

// PeekClaims decodes the claims of a JWT access token without verifying its
// signature.
func PeekClaims(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &claims, nil
}

// ExpiresAt returns the token expiry, or the zero time when there is no exp claim.
func (c *TokenClaims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// Expired reports whether the token's exp claim is before now. Tokens without
// an exp claim never expire from the client's point of view.
func (c *TokenClaims) Expired(now time.Time) bool {
	exp := c.ExpiresAt()
	return !exp.IsZero() && now.After(exp)
}
