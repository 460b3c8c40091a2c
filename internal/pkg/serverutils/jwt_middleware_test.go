package serverutils

import (
	"testing"
	"time"

	"healthbridge-be/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string, secret string, expiry time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseUserIDValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, userID.String(), testSecret, time.Hour)

	got, err := ParseUserID(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParseUserIDWrongSecret(t *testing.T) {
	token := signToken(t, uuid.NewString(), "other-secret", time.Hour)

	_, err := ParseUserID(token, testSecret)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestParseUserIDExpiredToken(t *testing.T) {
	token := signToken(t, uuid.NewString(), testSecret, -time.Hour)

	_, err := ParseUserID(token, testSecret)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestParseUserIDGarbage(t *testing.T) {
	_, err := ParseUserID("not-a-token", testSecret)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestParseUserIDNonUUIDSubject(t *testing.T) {
	token := signToken(t, "user-42", testSecret, time.Hour)

	_, err := ParseUserID(token, testSecret)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}
