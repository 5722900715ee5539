package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/jrsteele09/fitcamp-session/token"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("1234"))
	require.NoError(t, err)
	return raw
}

func TestInspect(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })

	t.Run("numeric id claim", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{
			"id":  7,
			"iat": now.Add(-time.Hour).Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		info, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, "7", info.Subject)
		require.False(t, info.Expired)
		require.Equal(t, now.Add(time.Hour).Unix(), info.ExpiresAt.Unix())
		require.Equal(t, now.Add(-time.Hour).Unix(), info.IssuedAt.Unix())
		require.Equal(t, len(raw), info.Length)
	})

	t.Run("expired", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "user-1", "exp": now.Add(-time.Minute).Unix()})
		info, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", info.Subject)
		require.True(t, info.Expired)
		require.Nil(t, info.IssuedAt)
	})

	t.Run("not a jwt", func(t *testing.T) {
		_, err := token.Inspect("abc")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)

		_, err = token.Inspect("a.b.c")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
