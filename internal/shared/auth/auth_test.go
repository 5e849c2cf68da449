package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signHS256(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestHMACValidator_Validate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	validator := NewHMACValidator(" s3cret ")
	validator.now = func() time.Time { return now }

	good := signHS256(t, "s3cret", Claims{Email: "ops@example.test", RegisteredClaims: jwt.RegisteredClaims{
		Subject: "user-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	claims, err := validator.Validate(good)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ops@example.test" {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	expired := signHS256(t, "s3cret", Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "user-1", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}})
	if _, err := validator.Validate(expired); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired error, got %v", err)
	}

	wrongKey := signHS256(t, "other", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if _, err := validator.Validate(wrongKey); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	noSubject := signHS256(t, "s3cret", Claims{})
	if _, err := validator.Validate(noSubject); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected missing subject to be rejected, got %v", err)
	}

	if _, err := validator.Validate("  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %v", err)
	}
}

func TestHMACValidator_DisabledWithoutSecret(t *testing.T) {
	t.Parallel()

	validator := NewHMACValidator("")
	if validator.Enabled() {
		t.Fatal("validator without secret must be disabled")
	}
	if _, err := validator.Validate("a.b.c"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestInspectExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signHS256(t, "whatever", Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}})

	got, ok := InspectExpiry(token)
	if !ok || !got.Equal(exp) {
		t.Fatalf("expected %s, got %s (ok=%v)", exp, got, ok)
	}
	if _, ok := InspectExpiry("mock-jwt-token-for-development"); ok {
		t.Fatal("opaque tokens have no expiry")
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/ws/imports/job-1?token=from-query", nil)
	if got := ExtractToken(req, ""); got != "from-query" {
		t.Fatalf("expected query token, got %q", got)
	}

	req.Header.Set("Authorization", "bearer from-header ")
	if got := ExtractToken(req, ""); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}

	if got := ExtractBearerTokenFromHeader("Basic abc"); got != "" {
		t.Fatalf("expected no token for basic auth, got %q", got)
	}
	if got := ExtractBearerToken(nil); got != "" {
		t.Fatalf("expected empty token for nil request, got %q", got)
	}
}
