package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"ireporter/internal/config"
	"ireporter/internal/models"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	"ireporter/internal/services/mailer"
	contextutils "ireporter/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/mail.v2"
)

// EmailService sends owner notifications over SMTP using gomail
type EmailService struct {
	cfg    *config.Config
	logger *observability.Logger
	dialer *mail.Dialer
}

var (
	_ serviceinterfaces.EmailService = (*EmailService)(nil)
	_ mailer.Mailer                  = (*EmailService)(nil)
)

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config, logger *observability.Logger) *EmailService {
	var dialer *mail.Dialer
	if cfg.Email.Enabled && cfg.Email.SMTP.Host != "" {
		dialer = mail.NewDialer(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password,
		)
	}

	return &EmailService{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
	}
}

// IsEnabled returns whether email functionality is enabled
func (e *EmailService) IsEnabled() bool {
	return e.cfg.Email.Enabled && e.cfg.Email.SMTP.Host != ""
}

// SendStatusNotification tells a report owner their report changed status
func (e *EmailService) SendStatusNotification(ctx context.Context, user *models.User, report *models.Report) (err error) {
	ctx, span := otel.Tracer("email-service").Start(ctx, "SendStatusNotification",
		trace.WithAttributes(
			attribute.Int("user.id", user.ID),
			attribute.Int("report.id", report.ID),
			attribute.String("report.status", string(report.Status)),
		),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping status notification", map[string]interface{}{
			"user_id":   user.ID,
			"report_id": report.ID,
		})
		return nil
	}

	if !user.Email.Valid || user.Email.String == "" {
		e.logger.Warn(ctx, "User has no email address, skipping status notification", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil
	}

	data := map[string]interface{}{
		"Username":    user.Username,
		"ReportTitle": report.Title,
		"Status":      string(report.Status),
		"ReportURL":   fmt.Sprintf("%s/reports/%d", e.cfg.Server.AppBaseURL, report.ID),
	}

	subject := fmt.Sprintf("Your report %q is now %s", report.Title, report.Status)

	if err = e.SendEmail(ctx, user.Email.String, subject, "status_notification", data); err != nil {
		return contextutils.WrapError(err, "failed to send status notification")
	}

	e.logger.Info(ctx, "Status notification sent", map[string]interface{}{
		"user_id":   user.ID,
		"report_id": report.ID,
		"status":    string(report.Status),
	})
	return nil
}

// SendEmail sends a generic email with the given parameters
func (e *EmailService) SendEmail(ctx context.Context, to, subject, templateName string, data map[string]interface{}) (err error) {
	ctx, span := otel.Tracer("email-service").Start(ctx, "SendEmail",
		trace.WithAttributes(
			attribute.String("email.to", to),
			attribute.String("email.template", templateName),
		),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping email send", map[string]interface{}{
			"to":       to,
			"template": templateName,
		})
		return nil
	}

	if e.dialer == nil {
		return contextutils.WrapError(contextutils.ErrServiceUnavailable, "email service not properly configured")
	}

	m := mail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", e.cfg.Email.SMTP.FromName, e.cfg.Email.SMTP.FromAddress))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	content, err := e.generateEmailContent(templateName, data)
	if err != nil {
		return contextutils.WrapError(err, "failed to generate email content")
	}
	m.SetBody("text/html", content)

	if err = e.dialer.DialAndSend(m); err != nil {
		e.logger.Error(ctx, "Failed to send email", err, map[string]interface{}{
			"to":       to,
			"template": templateName,
		})
		return contextutils.WrapError(err, "failed to send email")
	}

	e.logger.Info(ctx, "Email sent", map[string]interface{}{
		"to":       to,
		"template": templateName,
	})
	return nil
}

// generateEmailContent renders a named template to HTML
func (e *EmailService) generateEmailContent(templateName string, data map[string]interface{}) (string, error) {
	switch templateName {
	case "status_notification":
		return e.generateStatusNotificationTemplate(data)
	default:
		return "", contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown template: %s", templateName)
	}
}

func (e *EmailService) generateStatusNotificationTemplate(data map[string]interface{}) (string, error) {
	const templateStr = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Report Status Update</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1976D2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 20px; }
        .status { display: inline-block; background-color: #eee; padding: 4px 12px; border-radius: 12px; font-weight: bold; }
        .button { display: inline-block; background-color: #1976D2; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { background-color: #eee; padding: 15px; text-align: center; font-size: 12px; color: #666; border-radius: 0 0 5px 5px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Report Status Update</h1>
        </div>
        <div class="content">
            <h2>Hello {{.Username}},</h2>
            <p>Your report <strong>{{.ReportTitle}}</strong> has a new status:</p>
            <p><span class="status">{{.Status}}</span></p>
            <div style="text-align: center;">
                <a href="{{.ReportURL}}" class="button">View Your Report</a>
            </div>
        </div>
        <div class="footer">
            <p>You are receiving this because you filed this report.</p>
        </div>
    </div>
</body>
</html>`

	tmpl, err := template.New("status_notification").Parse(templateStr)
	if err != nil {
		return "", contextutils.WrapError(err, "failed to parse template")
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", contextutils.WrapError(err, "failed to execute template")
	}
	return buf.String(), nil
}
