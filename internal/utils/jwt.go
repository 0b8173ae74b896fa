package utils // package utils provides helpers for signing and verifying visitor session tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that are malformed, expired, signed
// with another key or carry a subject that is not a session id.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken represents a signed session cookie value along with its
// expiry.  ID is the visitor's session id (the JWT subject).
type SessionToken struct {
	ID    string    // session id carried in the sub claim
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// NewSessionToken builds and signs an HS256 JWT for the session id.  The
// claims are sub (session id), exp and iat.
func NewSessionToken(secret, sessionID string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, fmt.Errorf("sign session token: %w", err)
	}
	return SessionToken{ID: sessionID, Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw and returns the session id it carries.
// Only HS256 is accepted.
func ParseSessionToken(secret, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	// The subject must be a well-formed uuid so it can be used as a key.
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
