package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	id := NewSessionID()
	tok, err := NewSessionToken("s3cret", id, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, id, tok.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := ParseSessionToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestSessionTokenRejects(t *testing.T) {
	id := NewSessionID()
	good, err := NewSessionToken("s3cret", id, time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("s3cret", id, -time.Minute)
	require.NoError(t, err)
	notUUID, err := NewSessionToken("s3cret", "visitor-1", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   id,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong key": {"other", good.Token},
		"expired":   {"s3cret", expired.Token},
		"garbage":   {"s3cret", "not-a-jwt"},
		"empty":     {"s3cret", ""},
		"bad sub":   {"s3cret", notUUID.Token},
		"alg none":  {"s3cret", none},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSessionToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
