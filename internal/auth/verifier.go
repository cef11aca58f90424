// Package auth consumes the external identity provider: it validates
// bearer credentials and yields the stable user id they are bound to.
// Token issuance is not implemented here; clients obtain tokens from the
// provider and this package only verifies them.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for missing, malformed, expired or
// wrongly-signed credentials.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified subject of a bearer token.  Email and Name are
// optional claims used to auto-provision the user document on first login.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Verifier validates a bearer credential and yields the caller's identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// JWTVerifier verifies HS256-signed ID tokens sharing a secret with the
// identity provider.  The subject claim carries the uid.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a verifier for the given shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and extracts the identity claims.
func (v *JWTVerifier) Verify(raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		// some providers put the uid in a dedicated claim
		uid, _ = claims["uid"].(string)
	}
	if uid == "" {
		return Identity{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return Identity{UID: uid, Email: email, Name: name}, nil
}
