package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("s3cret", "z-article")

	tok, err := m.GenerateToken("tenant-1", "user-1", RoleEditor, time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleEditor, claims.Role)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("s3cret", "z-article")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := m.GenerateToken("tenant-1", "user-1", RoleEditor, time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_RejectsForeignSecretAndIssuer(t *testing.T) {
	tok, err := NewJWTManager("other", "z-article").GenerateToken("t", "u", RoleEditor, time.Hour)
	require.NoError(t, err)
	_, err = NewJWTManager("s3cret", "z-article").ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err = NewJWTManager("s3cret", "someone-else").GenerateToken("t", "u", RoleEditor, time.Hour)
	require.NoError(t, err)
	_, err = NewJWTManager("s3cret", "z-article").ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RequiresTenant(t *testing.T) {
	m := NewJWTManager("s3cret", "z-article")
	tok, err := m.GenerateToken("", "u", RoleEditor, time.Hour)
	require.NoError(t, err)
	_, err = m.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
