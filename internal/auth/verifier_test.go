package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestResolveValidToken(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	accountID, err := verifier.Resolve(context.Background(), signToken(t, "secret", "acc-1"))
	require.NoError(t, err)
	require.Equal(t, "acc-1", accountID)
}

func TestResolveWrongSecret(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	_, err := verifier.Resolve(context.Background(), signToken(t, "other", "acc-1"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveMissingSubject(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	token := jwt.New(jwt.SigningMethodHS256)
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = verifier.Resolve(context.Background(), signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveGarbage(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	_, err := verifier.Resolve(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
