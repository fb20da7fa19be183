package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret-key-for-testing-only-32b!", 60)

	token, err := m.GenerateToken("host-1", "Abebe")
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "host-1", claims.UserID)
	assert.Equal(t, "Abebe", claims.Nickname)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("test-secret-key-for-testing-only-32b!", -60)

	token, err := m.GenerateToken("host-1", "")
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", 60).GenerateToken("host-1", "")
	require.NoError(t, err)

	_, err = NewManager("secret-b", 60).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	_, err := NewManager("secret", 60).VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
