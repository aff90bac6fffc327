// Package mailer defines the outbound email interface for the reporting backend.
package mailer

import (
	"context"

	"ireporter/internal/models"
)

// Mailer defines the interface for email sending functionality
type Mailer interface {
	// SendStatusNotification tells a report owner their report changed status
	SendStatusNotification(ctx context.Context, user *models.User, report *models.Report) error

	// SendEmail sends a generic email with the given parameters
	SendEmail(ctx context.Context, to, subject, templateName string, data map[string]interface{}) error

	// IsEnabled returns whether email functionality is enabled
	IsEnabled() bool
}
