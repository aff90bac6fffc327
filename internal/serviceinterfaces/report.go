// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"ireporter/internal/models"
)

// ReportService defines the report lifecycle operations exposed to the HTTP layer
type ReportService interface {
	// CreateReport files a new pending report owned by principalID, with optional media
	CreateReport(ctx context.Context, principalID int, req models.CreateReportRequest, media []models.UploadFile) (*models.Report, error)

	// GetReport fetches one report with its attachments
	GetReport(ctx context.Context, id int) (*models.Report, error)

	// UpdateReport applies a partial edit plus attachment changes, owner-and-pending gated
	UpdateReport(ctx context.Context, principalID, id int, patch models.ReportPatch, addMedia []models.UploadFile, removeMediaIDs []int) (*models.Report, error)

	// DeleteReport removes a report and all of its attachments, owner-and-pending gated
	DeleteReport(ctx context.Context, principalID, id int) error

	// SetReportStatus advances the moderation state machine; the caller is
	// responsible for the moderator role check
	SetReportStatus(ctx context.Context, principalID, id int, newStatus models.ReportStatus) (*models.Report, error)

	// ListReports returns a stable filtered page
	ListReports(ctx context.Context, filter models.ReportFilter, page, pageSize int) (*models.ReportPage, error)
}

// UserService defines the account operations the transport and CLI need
type UserService interface {
	// GetUserByID fetches one user
	GetUserByID(ctx context.Context, id int) (*models.User, error)

	// GetUserByUsername fetches one user by username
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// CreateUser registers an account with a bcrypt-hashed password
	CreateUser(ctx context.Context, username, email, password string, isModerator bool) (*models.User, error)

	// AuthenticateUser verifies a username/password pair
	AuthenticateUser(ctx context.Context, username, password string) (*models.User, error)

	// IsModerator reports whether the principal may perform moderation actions
	IsModerator(ctx context.Context, userID int) (bool, error)

	// ListUsers returns all users, newest first
	ListUsers(ctx context.Context) ([]models.User, error)
}

// EmailService defines the interface for email functionality
type EmailService interface {
	// SendStatusNotification tells a report owner their report changed status
	SendStatusNotification(ctx context.Context, user *models.User, report *models.Report) error

	// IsEnabled returns whether email functionality is enabled
	IsEnabled() bool
}
