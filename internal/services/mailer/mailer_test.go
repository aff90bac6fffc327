package mailer

import (
	"context"

	"ireporter/internal/models"
)

// noopMailer is a compile-time check that the interface stays implementable
// by simple fakes in tests.
type noopMailer struct{}

func (noopMailer) SendStatusNotification(_ context.Context, _ *models.User, _ *models.Report) error {
	return nil
}

func (noopMailer) SendEmail(_ context.Context, _, _, _ string, _ map[string]interface{}) error {
	return nil
}

func (noopMailer) IsEnabled() bool { return false }

var _ Mailer = noopMailer{}
