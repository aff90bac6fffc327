package handlers

import (
	"net/http"

	contextutils "ireporter/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleAppError maps a service error onto an HTTP response. Errors carry a
// closed set of codes, so no string matching happens here.
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if !contextutils.AsError(err, &appErr) {
		appErr = contextutils.NewAppError(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			err.Error(),
		)
	}

	_ = c.Error(err)
	c.JSON(mapErrorCodeToHTTPStatus(appErr.Code), appErr.ToJSON())
}

// HandleValidationError rejects a request over a single bad field.
func HandleValidationError(c *gin.Context, field, reason string) {
	HandleAppError(c, contextutils.NewValidationError(field, reason))
}

// mapErrorCodeToHTTPStatus maps AppError codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeValidationFailed:
		return http.StatusBadRequest

	case contextutils.ErrorCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType

	case contextutils.ErrorCodeUnauthorized:
		return http.StatusUnauthorized

	case contextutils.ErrorCodeForbidden:
		return http.StatusForbidden

	case contextutils.ErrorCodeRecordNotFound:
		return http.StatusNotFound

	case contextutils.ErrorCodeInvalidStatusTransition:
		return http.StatusConflict

	case contextutils.ErrorCodeTimeout:
		return http.StatusRequestTimeout

	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeDatabaseConnection:
		return http.StatusServiceUnavailable

	case contextutils.ErrorCodeStorageFailure, contextutils.ErrorCodeDatabaseQuery,
		contextutils.ErrorCodeDatabaseTransaction, contextutils.ErrorCodeForeignKeyViolation,
		contextutils.ErrorCodeInternalError:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
