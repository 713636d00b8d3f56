package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether raw is a JWT whose exp claim has already
// passed. Opaque or malformed tokens are never judged locally; only the
// server can reject those.
func tokenExpired(raw string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}

	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}

	return claims.ExpiresAt.Before(now)
}
