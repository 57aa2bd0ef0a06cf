// Package auth inspects the access tokens issued by the backend.
// The CLI never holds the signing key, so claims are decoded without
// verification and are only used for display.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the access token claims set by the backend
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the subject claim
func (c *TokenClaims) Username() string {
	return c.Subject
}

// ExpiresAtTime returns the expiry time, or the zero time when the token has none
func (c *TokenClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired reports whether the token is past its expiry at now
func (c *TokenClaims) Expired(now time.Time) bool {
	exp := c.ExpiresAtTime()
	return !exp.IsZero() && !now.Before(exp)
}

// ParseUnverified decodes the claims of a token without checking its signature
func ParseUnverified(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}
