package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, h.Verify(hash, "correct horse"))
	assert.False(t, h.Verify(hash, "Correct horse"))
	assert.False(t, h.Verify("not-a-hash", "correct horse"))

	other, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes are salted")

	h.VerifyNothing("anything")
}

func TestNewHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).Cost)
}

func TestTokens_RoundTrip(t *testing.T) {
	tk := NewTokens("s3cret", time.Hour)

	tok, err := tk.Issue(42, "a@example.com")
	require.NoError(t, err)

	c, err := tk.Parse(tok)
	require.NoError(t, err)
	id, err := c.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@example.com", c.Email)
}

func TestTokens_Rejects(t *testing.T) {
	tk := NewTokens("s3cret", time.Hour)
	tok, err := tk.Issue(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	expired := NewTokens("s3cret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(1, "a@example.com")
	require.NoError(t, err)
	_, err = tk.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "iss": issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tk.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")

	_, err = tk.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
