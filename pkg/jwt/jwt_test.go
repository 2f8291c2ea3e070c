package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateAccessToken("user-1", "a@b.c", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).GenerateAccessToken("user-1", "", "user")
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret", time.Hour)
	m.ttl = -time.Minute

	token, err := m.GenerateAccessToken("user-1", "", "user")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}
