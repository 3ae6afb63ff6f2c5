package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceTokenRoundtrip(t *testing.T) {
	token, err := GenerateDeviceJWT("dev-1", "secret")
	require.NoError(t, err)

	sub, err := ParseDeviceToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", sub)
}

func TestDeviceTokenWrongSecret(t *testing.T) {
	token, err := GenerateDeviceJWT("dev-1", "secret")
	require.NoError(t, err)

	_, err = ParseDeviceToken(token, "other-secret")
	assert.Error(t, err)
}

func TestOperatorTokenIsNotADeviceToken(t *testing.T) {
	token, err := GenerateJWT(42, "secret")
	require.NoError(t, err)

	// operator tokens lack the device audience and must not authorize
	// device endpoints
	_, err = ParseDeviceToken(token, "secret")
	assert.Error(t, err)
}

func TestParseDeviceTokenGarbage(t *testing.T) {
	_, err := ParseDeviceToken("not-a-jwt", "secret")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
