// Package notify holds the outbound email capability. The rest of the
// application only sees the Notifier interface.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/civicflow/civicflow/internal/config"
)

// Notifier delivers a message to a recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP notifier when a host is configured, otherwise a
// logging stub so development setups work without a mail server.
func New(cfg config.SMTPConfig, logger *zap.Logger) Notifier {
	if strings.TrimSpace(cfg.Host) == "" {
		logger.Warn("SMTP_HOST not provided; emails will be logged instead of sent")
		return &logNotifier{logger: logger}
	}
	return &smtpNotifier{cfg: cfg, logger: logger}
}

type smtpNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func (n *smtpNotifier) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		n.logger.Error("failed to send email", zap.String("to", to), zap.Error(err))
		return err
	}
	n.logger.Info("email sent", zap.String("to", to))
	return nil
}

type logNotifier struct {
	logger *zap.Logger
}

func (n *logNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.logger.Info("email (not sent)", zap.String("to", to), zap.String("subject", subject))
	return nil
}
