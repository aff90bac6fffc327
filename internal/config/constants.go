package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout    = 60 * time.Second
	ServerShutdownTimeout = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Session timeouts
	SessionMaxAge = 7 * 24 * time.Hour // 7 days
)

// Pagination constants
const (
	// DefaultPageSize is applied when a listing request omits page_size
	DefaultPageSize = 10
	// MaxPageSize caps page_size to keep list queries bounded
	MaxPageSize = 100
)

// Upload constants
const (
	// DefaultUploadsDir is the durable storage directory for attachment files
	DefaultUploadsDir = "uploads"
	// DefaultMaxFileSizeMB caps a single uploaded file
	DefaultMaxFileSizeMB int64 = 10
)

// Session configuration constants
const (
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	// Session name
	SessionName = "ireporter-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data:; media-src 'self' blob: data:;"
)
