package service

import (
	"context"
	"log/slog"
)

// Mail represents an outbound email
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers outbound email
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer writes mail to the structured log instead of delivering
// it. Used in development and wherever outbound mail is disabled.
type LogMailer struct{}

// Send logs the mail
func (m *LogMailer) Send(_ context.Context, mail Mail) error {
	slog.Info("outbound mail",
		slog.String("to", mail.To),
		slog.String("subject", mail.Subject),
		slog.String("body", mail.Body),
	)
	return nil
}
