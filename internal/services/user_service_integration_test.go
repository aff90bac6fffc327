//go:build integration

package services

import (
	"context"
	"testing"

	"ireporter/internal/config"
	"ireporter/internal/observability"
	contextutils "ireporter/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAndAuthenticate_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	svc := NewUserService(db, logger)

	user, err := svc.CreateUser(context.Background(), "amara", "amara@example.com", "correct-horse", false)
	require.NoError(t, err)
	assert.Greater(t, user.ID, 0)
	assert.False(t, user.IsModerator)
	assert.True(t, user.PasswordHash.Valid)
	assert.NotEqual(t, "correct-horse", user.PasswordHash.String)

	got, err := svc.AuthenticateUser(context.Background(), "amara", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.AuthenticateUser(context.Background(), "amara", "wrong")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUnauthorized, contextutils.GetErrorCode(err))

	_, err = svc.AuthenticateUser(context.Background(), "nobody", "whatever")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUnauthorized, contextutils.GetErrorCode(err))
}

func TestUserService_DuplicateUsername_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	svc := NewUserService(db, logger)

	_, err := svc.CreateUser(context.Background(), "amara", "", "password-one", false)
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), "amara", "", "password-two", false)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))
}

func TestUserService_IsModerator_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	svc := NewUserService(db, logger)

	mod, err := svc.CreateUser(context.Background(), "moderator", "", "password-one", true)
	require.NoError(t, err)
	citizen, err := svc.CreateUser(context.Background(), "citizen", "", "password-two", false)
	require.NoError(t, err)

	isMod, err := svc.IsModerator(context.Background(), mod.ID)
	require.NoError(t, err)
	assert.True(t, isMod)

	isMod, err = svc.IsModerator(context.Background(), citizen.ID)
	require.NoError(t, err)
	assert.False(t, isMod)

	_, err = svc.IsModerator(context.Background(), 99999)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeRecordNotFound, contextutils.GetErrorCode(err))
}

func TestUserService_ShortPasswordRejected_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	svc := NewUserService(db, logger)

	_, err := svc.CreateUser(context.Background(), "amara", "", "short", false)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))
}
