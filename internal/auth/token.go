// Package auth inspects access tokens issued by the island server. Tokens are
// never verified here; the server does that. The client only needs to know
// whether a stored token is worth presenting.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token has no expiry")

// Claims is what the client reads out of an access token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect decodes token without verifying its signature.
func Inspect(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("parsing access token: %w", err)
	}
	if rc.ExpiresAt == nil {
		return Claims{Subject: rc.Subject}, ErrNoExpiry
	}
	return Claims{Subject: rc.Subject, ExpiresAt: rc.ExpiresAt.Time}, nil
}

// Valid reports whether token parses and expires after now.
func Valid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	c, err := Inspect(token)
	if err != nil {
		return false
	}
	return now.Before(c.ExpiresAt)
}
