package authclient

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestTokenExpiredPastExp(t *testing.T) {
	now := time.Now()
	raw := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	})
	if !tokenExpired(raw, now) {
		t.Fatal("expected token judged expired")
	}
}

func TestTokenExpiredFutureExp(t *testing.T) {
	now := time.Now()
	raw := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if tokenExpired(raw, now) {
		t.Fatal("expected token judged valid")
	}
}

func TestTokenExpiredNoExpClaim(t *testing.T) {
	raw := signedToken(t, jwt.RegisteredClaims{Subject: "user-1"})
	if tokenExpired(raw, time.Now()) {
		t.Fatal("expected token without exp never judged locally")
	}
}

func TestTokenExpiredOpaqueToken(t *testing.T) {
	for _, raw := range []string{"", "opaque-session-id", "a.b", "not.a.jwt"} {
		if tokenExpired(raw, time.Now()) {
			t.Fatalf("expected opaque token %q never judged expired", raw)
		}
	}
}
