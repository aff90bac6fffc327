// Package middleware provides authentication and authorization middleware for the Gin web framework.
package middleware

import (
	"context"
	"net/http"

	contextutils "ireporter/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for storing user information
const (
	// UserIDKey is the key used to store the principal id in session and context
	UserIDKey = "user_id"
	// UsernameKey is the key used to store the username in session and context
	UsernameKey = "username"
)

// principalFromSession extracts the trusted principal id from the session,
// or reports false when the request is unauthenticated.
func principalFromSession(c *gin.Context) (int, string, bool) {
	session := sessions.Default(c)

	userID := session.Get(UserIDKey)
	if userID == nil {
		return 0, "", false
	}

	userIDInt, ok := userID.(int)
	if !ok {
		// JSON-decoded session values come back as float64
		userIDFloat, ok := userID.(float64)
		if !ok {
			return 0, "", false
		}
		userIDInt = int(userIDFloat)
	}

	username, ok := session.Get(UsernameKey).(string)
	if !ok || username == "" {
		return 0, "", false
	}

	return userIDInt, username, true
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Authentication required",
		"code":  "UNAUTHORIZED",
	})
	c.Abort()
}

// RequireAuth returns a middleware that requires an authenticated session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := principalFromSession(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		setPrincipal(c, userID, username)
		c.Next()
	}
}

// setPrincipal records the principal on the gin context for handlers and on
// the request context so downstream logging can correlate entries to a user.
func setPrincipal(c *gin.Context, userID int, username string) {
	c.Set(UserIDKey, userID)
	c.Set(UsernameKey, username)
	c.Request = c.Request.WithContext(contextutils.WithUserID(c.Request.Context(), userID))
}

// ModeratorChecker is the role-check collaborator for RequireModerator
type ModeratorChecker interface {
	IsModerator(ctx context.Context, userID int) (bool, error)
}

// RequireModerator returns a middleware that requires an authenticated
// session whose principal carries the moderator flag
func RequireModerator(userService ModeratorChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := principalFromSession(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		isModerator, err := userService.IsModerator(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check moderator status",
				"code":  "INTERNAL_ERROR",
			})
			c.Abort()
			return
		}
		if !isModerator {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Moderator access required",
				"code":  "FORBIDDEN",
			})
			c.Abort()
			return
		}

		setPrincipal(c, userID, username)
		c.Next()
	}
}

// PrincipalID returns the authenticated principal id set by RequireAuth
// or RequireModerator.
func PrincipalID(c *gin.Context) (int, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}
