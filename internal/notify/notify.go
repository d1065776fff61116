// Package notify delivers issued registration keys to their occupants.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/condohub/property-service/internal/config"
)

const registrationKeySubject = "Your unit registration key"

// Notifier hands a registration key to its recipient out of band.
type Notifier interface {
	Notify(ctx context.Context, email, token string) error
}

// New picks SendGrid when an API key is configured and falls back to a
// log-only notifier otherwise.
func New(cfg config.NotificationConfig, logger *zap.Logger) Notifier {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		logger.Warn("SENDGRID_API_KEY not set, registration keys will not be emailed")
		return NewLogNotifier(logger)
	}
	return NewSendGridMailer(cfg)
}

// SendGridMailer emails keys through the SendGrid v3 API.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	sandbox bool
}

// NewSendGridMailer constructs a mailer.
func NewSendGridMailer(cfg config.NotificationConfig) *SendGridMailer {
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:    mail.NewEmail(cfg.EmailFromName, cfg.EmailFrom),
		sandbox: cfg.SandboxMode,
	}
}

func (m *SendGridMailer) Notify(ctx context.Context, email, token string) error {
	message := buildMessage(m.from, email, token, m.sandbox)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func buildMessage(from *mail.Email, email, token string, sandbox bool) *mail.SGMailV3 {
	to := mail.NewEmail("", email)
	plain := fmt.Sprintf("Use this key to register your unit: %s", token)
	html := fmt.Sprintf("<p>Use this key to register your unit:</p><p><code>%s</code></p><p>%d</p>", token, time.Now().Year())
	message := mail.NewSingleEmail(from, registrationKeySubject, to, plain, html)
	if sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}
	return message
}

// LogNotifier records that a key would have been sent. The token is never logged.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, email, _ string) error {
	n.logger.Info("registration key notification skipped", zap.String("recipient", email))
	return nil
}
