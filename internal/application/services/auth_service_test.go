package services

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceLogin(t *testing.T) {
	hash, err := security.HashPassword("open sesame")
	require.NoError(t, err)
	svc := NewAuthService(AuthConfig{PasswordHash: hash, JWTSecret: "secret", TokenTTL: time.Hour}, logging.NewDiscardLogger())
	require.True(t, svc.Enabled())

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := svc.Login("open sesame")
	require.NoError(t, err)
	assert.Equal(t, "editor", result.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "editor", claims.Subject)

	_, err = svc.ValidateToken(result.Token + "x")
	assert.Error(t, err)
}

func TestAuthServiceDisabled(t *testing.T) {
	svc := NewAuthService(AuthConfig{}, logging.NewDiscardLogger())
	assert.False(t, svc.Enabled())

	_, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
	_, err = svc.ValidateToken("token")
	assert.ErrorIs(t, err, ErrAuthDisabled)

	noHash := NewAuthService(AuthConfig{JWTSecret: "secret"}, logging.NewDiscardLogger())
	_, err = noHash.Login("anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}
