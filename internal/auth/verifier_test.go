package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestVerifyValidToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	raw := signToken(t, "test-secret", jwt.MapClaims{
		"sub":   "u1",
		"email": "ada@example.com",
		"name":  "Ada",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	id, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UID != "u1" || id.Email != "ada@example.com" || id.Name != "Ada" {
		t.Fatalf("got identity %+v", id)
	}
}

func TestVerifyUIDClaimFallback(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	raw := signToken(t, "test-secret", jwt.MapClaims{
		"uid": "u2",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	id, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UID != "u2" {
		t.Fatalf("got uid %q", id.UID)
	}
}

func TestVerifyRejections(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	future := time.Now().Add(time.Hour).Unix()

	bad := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": signToken(t, "other-secret", jwt.MapClaims{"sub": "u1", "exp": future}),
		"expired":      signToken(t, "test-secret", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject":   signToken(t, "test-secret", jwt.MapClaims{"exp": future}),
	}
	for name, raw := range bad {
		if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: got %v, want ErrInvalidToken", name, err)
		}
	}
}
