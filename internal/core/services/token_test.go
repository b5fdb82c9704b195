package services

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestKeys(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestSessionTokens_RoundTrip(t *testing.T) {
	key := generateTestKeys(t)
	tokens := NewSessionTokens(key, &key.PublicKey, time.Hour)

	raw, expires, err := tokens.Issue("sid-1", "u1", time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	sid, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)
}

func TestSessionTokens_Rejects(t *testing.T) {
	key := generateTestKeys(t)
	other := generateTestKeys(t)
	tokens := NewSessionTokens(key, &key.PublicKey, time.Hour)

	expired, _, err := tokens.Issue("sid-1", "u1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	foreign, _, err := NewSessionTokens(other, &other.PublicKey, time.Hour).Issue("sid-2", "u2", time.Now())
	require.NoError(t, err)

	for name, raw := range map[string]string{"expired": expired, "wrong key": foreign, "garbage": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidSessionToken)
		})
	}
}
