package contextutils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := &AppError{Code: ErrorCodeValidationFailed, Severity: SeverityWarn, Message: "Invalid title"}
	assert.Equal(t, "VALIDATION_FAILED: Invalid title", err.Error())

	err.Details = "must not be empty"
	assert.Equal(t, "VALIDATION_FAILED: Invalid title - must not be empty", err.Error())
}

func TestAppError_Is(t *testing.T) {
	err := NewValidationError("title", "must not be empty")
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestNewForbiddenError(t *testing.T) {
	err := NewForbiddenError("not report owner")
	assert.Equal(t, ErrorCodeForbidden, err.Code)
	assert.Equal(t, "not report owner", err.Details)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestWrapError_PreservesCode(t *testing.T) {
	wrapped := WrapError(ErrRecordNotFound, "fetching report 7")
	var appErr *AppError
	require.True(t, AsError(wrapped, &appErr))
	assert.Equal(t, ErrorCodeRecordNotFound, appErr.Code)
	assert.Equal(t, "fetching report 7", appErr.Message)
	assert.True(t, errors.Is(wrapped, ErrRecordNotFound))
}

func TestWrapError_PlainError(t *testing.T) {
	cause := fmt.Errorf("disk full")
	wrapped := WrapError(cause, "writing attachment")
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))
	assert.NoError(t, WrapErrorf(nil, "context %d", 1))
}

func TestWrapErrorf_WithWrapVerb(t *testing.T) {
	wrapped := WrapErrorf(ErrStorageFailure, "saving file %s: %w", "abc.png", ErrStorageFailure)
	assert.Equal(t, ErrorCodeStorageFailure, GetErrorCode(wrapped))
}

func TestGetErrorCode_Defaults(t *testing.T) {
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(fmt.Errorf("boom")))
	assert.Equal(t, SeverityError, GetErrorSeverity(fmt.Errorf("boom")))
	assert.Equal(t, SeverityInfo, GetErrorSeverity(ErrRecordNotFound))
}

func TestToJSON(t *testing.T) {
	err := NewValidationError("page_size", "must be positive")
	out := err.ToJSON()
	assert.Equal(t, "VALIDATION_FAILED", out["code"])
	assert.Equal(t, "must be positive", out["details"])
	assert.Equal(t, out["message"], out["error"])
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, 0, GetUserIDFromContext(ctx))
	ctx = WithUserID(ctx, 42)
	assert.Equal(t, 42, GetUserIDFromContext(ctx))
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(16)
	require.NoError(t, err)
	b, err := RandomToken(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
