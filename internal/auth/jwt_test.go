package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner(secret, "budget-ledger", time.Hour)
	owner := uuid.New()

	token, err := s.Sign(owner)
	require.NoError(t, err)

	got, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestSigner_Rejects(t *testing.T) {
	s := NewSigner(secret, "budget-ledger", time.Hour)
	owner := uuid.New()
	token, err := s.Sign(owner)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewSigner("another-secret-of-16", "budget-ledger", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewSigner(secret, "someone-else", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewSigner(secret, "budget-ledger", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "budget-ledger",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = s.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: owner.String(), Issuer: "budget-ledger"}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = s.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
