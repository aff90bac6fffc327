package services

import (
	"context"
	"database/sql"
	"testing"

	"ireporter/internal/config"
	"ireporter/internal/models"
	"ireporter/internal/observability"
	contextutils "ireporter/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDisabledEmailService() *EmailService {
	cfg := &config.Config{}
	return NewEmailService(cfg, observability.NewLogger(nil))
}

func TestEmailService_DisabledIsNoop(t *testing.T) {
	svc := newDisabledEmailService()
	assert.False(t, svc.IsEnabled())

	user := &models.User{ID: 1, Username: "amara", Email: sql.NullString{String: "amara@example.com", Valid: true}}
	report := &models.Report{ID: 2, Title: "Flooded road", Status: models.ReportStatusResolved}

	assert.NoError(t, svc.SendStatusNotification(context.Background(), user, report))
	assert.NoError(t, svc.SendEmail(context.Background(), "a@b.c", "subject", "status_notification", nil))
}

func TestEmailService_EnabledWithoutHostStaysDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Email.Enabled = true
	svc := NewEmailService(cfg, observability.NewLogger(nil))
	assert.False(t, svc.IsEnabled())
}

func TestEmailService_StatusNotificationTemplate(t *testing.T) {
	svc := newDisabledEmailService()

	content, err := svc.generateEmailContent("status_notification", map[string]interface{}{
		"Username":    "amara",
		"ReportTitle": "Flooded road",
		"Status":      "resolved",
		"ReportURL":   "https://example.com/reports/2",
	})
	require.NoError(t, err)
	assert.Contains(t, content, "amara")
	assert.Contains(t, content, "Flooded road")
	assert.Contains(t, content, "resolved")
	assert.Contains(t, content, "https://example.com/reports/2")
}

func TestEmailService_UnknownTemplate(t *testing.T) {
	svc := newDisabledEmailService()
	_, err := svc.generateEmailContent("nope", nil)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeInvalidInput, contextutils.GetErrorCode(err))
}
