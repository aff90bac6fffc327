package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ireporter/internal/config"
	"ireporter/internal/models"
	"ireporter/internal/observability"
	contextutils "ireporter/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuthTestRouter(users *MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions(config.SessionName, store))

	h := NewAuthHandler(users, &config.Config{}, observability.NewLogger(nil))
	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/auth/logout", h.Logout)
	r.GET("/v1/auth/status", h.Status)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	users := &MockUserService{}
	users.On("AuthenticateUser", mock.Anything, "reporter", "correct-horse").
		Return(&models.User{ID: 42, Username: "reporter"}, nil)

	r := newAuthTestRouter(users)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"reporter","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reporter")
	assert.NotEmpty(t, w.Result().Cookies(), "login should set a session cookie")
	users.AssertExpectations(t)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	users := &MockUserService{}
	users.On("AuthenticateUser", mock.Anything, "reporter", "wrong").
		Return(nil, contextutils.WrapError(contextutils.ErrUnauthorized, "invalid credentials"))

	r := newAuthTestRouter(users)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"reporter","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	users := &MockUserService{}
	r := newAuthTestRouter(users)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"reporter"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertNotCalled(t, "AuthenticateUser")
}

func TestAuthHandler_StatusFlow(t *testing.T) {
	users := &MockUserService{}
	users.On("AuthenticateUser", mock.Anything, "reporter", "correct-horse").
		Return(&models.User{ID: 42, Username: "reporter"}, nil)
	users.On("GetUserByID", mock.Anything, 42).
		Return(&models.User{ID: 42, Username: "reporter"}, nil)

	r := newAuthTestRouter(users)

	// anonymous first
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/auth/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	// log in, capture session cookie
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"reporter","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	// authenticated status with the cookie
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/auth/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	// logout clears the session
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	users.AssertExpectations(t)
}
