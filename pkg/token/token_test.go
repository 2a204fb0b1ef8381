package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	signer := NewSigner("secret", "mymemo")

	raw, err := signer.Sign("sid-1", 42, "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := signer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "mymemo", claims.Issuer)
}

func TestVerifyRejects(t *testing.T) {
	signer := NewSigner("secret", "mymemo")
	valid, err := signer.Sign("sid-1", 1, "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)
	expired, err := signer.Sign("sid-1", 1, "alice", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	otherIssuer, err := NewSigner("secret", "someone-else").Sign("sid-1", 1, "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cases := map[string]string{
		"wrong secret": mustSign(t, NewSigner("other", "mymemo")),
		"expired":      expired,
		"issuer":       otherIssuer,
		"tampered":     valid[:len(valid)-2] + "xx",
		"garbage":      "not-a-token",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := signer.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err = signer.Verify("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSignRequiresSessionID(t *testing.T) {
	_, err := NewSigner("secret", "mymemo").Sign("", 1, "alice", time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func mustSign(t *testing.T, s *Signer) string {
	t.Helper()
	raw, err := s.Sign("sid-1", 1, "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return raw
}
