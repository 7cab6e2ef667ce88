package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/pkg/jwtutil"
)

func TestIssueToken(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	svc := NewAuthService(hash, "secret", time.Hour)
	require.True(t, svc.Enabled())

	tok, err := svc.IssueToken("correct horse")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := jwtutil.ParseToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, jwtutil.RoleAdmin, claims.Role)

	_, err = svc.IssueToken("wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.IssueToken("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthDisabled(t *testing.T) {
	svc := NewAuthService("", "", time.Hour)
	assert.False(t, svc.Enabled())

	_, err := svc.IssueToken("anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
	_, err = svc.Mint()
	assert.ErrorIs(t, err, ErrAuthDisabled)
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
