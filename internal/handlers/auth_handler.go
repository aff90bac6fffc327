package handlers

import (
	"net/http"

	"ireporter/internal/config"
	"ireporter/internal/middleware"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	contextutils "ireporter/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler establishes and tears down the cookie session that carries
// the trusted principal id.
type AuthHandler struct {
	userService serviceinterfaces.UserService
	cfg         *config.Config
	logger      *observability.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService serviceinterfaces.UserService, cfg *config.Config, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cfg:         cfg,
		logger:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "body", "username and password are required")
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.UserIDKey, user.ID)
	session.Set(middleware.UsernameKey, user.Username)
	if err := session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to save session"))
		return
	}

	h.logger.Info(c.Request.Context(), "User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: config.SessionPath, MaxAge: -1})
	if err := session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to clear session"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Status handles GET /v1/auth/status: who am I, if anyone.
func (h *AuthHandler) Status(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get(middleware.UserIDKey).(int)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}
