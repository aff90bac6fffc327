package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"ireporter/internal/config"
	"ireporter/internal/middleware"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	"ireporter/internal/version"
)

// NewRouter wires middleware, handlers and routes into a gin engine.
func NewRouter(
	cfg *config.Config,
	reportService serviceinterfaces.ReportService,
	userService serviceinterfaces.UserService,
	uploadsDir string,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "ireporter"})
	})

	router.Use(observability.GinMiddleware("ireporter"))

	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
		sessionOpts.Secure = false
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	authHandler := NewAuthHandler(userService, cfg, logger)
	reportHandler := NewReportHandler(reportService, cfg, logger)
	adminHandler := NewAdminHandler(reportService, cfg, logger)

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "ireporter",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/status", authHandler.Status)
		}

		// the public feed and single-report reads need no session
		v1.GET("/reports", reportHandler.List)
		v1.GET("/reports/:id", reportHandler.Get)

		v1.POST("/reports", middleware.RequireAuth(), reportHandler.Create)
		v1.PATCH("/reports/:id", middleware.RequireAuth(), reportHandler.Update)
		v1.DELETE("/reports/:id", middleware.RequireAuth(), reportHandler.Delete)

		// attachment bytes are served statically by stored name
		v1.Static("/media", uploadsDir)

		admin := v1.Group("/admin", middleware.RequireModerator(userService))
		{
			admin.PUT("/reports/:id/status", adminHandler.SetStatus)
		}
	}

	return router
}

// requestLogger logs every request through the observability logger with
// trace correlation.
func requestLogger(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	}
}
