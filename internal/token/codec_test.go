package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhive/hive/internal/token"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndVerify(t *testing.T) {
	codec := token.NewCodec("v1", testKey)
	userID := uuid.New()

	raw, err := codec.Issue(userID, "alice", []string{"TEAM_MEMBER"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"TEAM_MEMBER"}, claims.Roles)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := token.NewCodec("v1", testKey)

	raw, err := codec.Issue(uuid.New(), "alice", nil, -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestVerifyTamperedToken(t *testing.T) {
	codec := token.NewCodec("v1", testKey)

	raw, err := codec.Issue(uuid.New(), "alice", nil, time.Hour)
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := token.NewCodec("v1", testKey)
	verifier := token.NewCodec("v1", []byte("another-key-another-key-another!"))

	raw, err := issuer.Issue(uuid.New(), "alice", nil, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestVerifyMalformedToken(t *testing.T) {
	codec := token.NewCodec("v1", testKey)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := codec.Verify(raw)
		require.Error(t, err, "token %q", raw)
		assert.ErrorIs(t, err, token.ErrMalformed, "token %q", raw)
	}
}

func TestVerifyWithRotatedKey(t *testing.T) {
	oldCodec := token.NewCodec("v1", testKey)
	raw, err := oldCodec.Issue(uuid.New(), "alice", nil, time.Hour)
	require.NoError(t, err)

	// New active key, old key kept for verification.
	newCodec := token.NewCodec("v2", []byte("new-signing-key-new-signing-key!"))
	newCodec.AddVerificationKey("v1", testKey)

	claims, err := newCodec.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// Without the old key registered the same token is rejected.
	bare := token.NewCodec("v2", []byte("new-signing-key-new-signing-key!"))
	_, err = bare.Verify(raw)
	require.Error(t, err)
}

func TestExpiredTokenStaysExpired(t *testing.T) {
	// Expiry must hold on every verification, not just the first.
	codec := token.NewCodec("v1", testKey)
	raw, err := codec.Issue(uuid.New(), "alice", nil, -time.Second)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, token.ErrExpired)
	}
}
