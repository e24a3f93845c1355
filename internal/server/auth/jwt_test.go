package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken("user-1", "auth-1", secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := GetUserIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionToken_WrongKey(t *testing.T) {
	token, err := GenerateSessionToken("user-1", "auth-1", []byte("key-a"), time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, []byte("key-b"))
	assert.Error(t, err)
}

func TestSessionToken_Expired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken("user-1", "auth-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, secret)
	assert.Error(t, err)
}

func TestSessionToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not-a-token", []byte("k"))
	assert.Error(t, err)
}
