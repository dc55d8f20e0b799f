package mailer

import (
	"context"
	"log/slog"
)

// LogMailer is the dev/no-SMTP implementation: it records the send instead
// of delivering it.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.InfoContext(ctx, "mail.send", "to", msg.To, "subject", msg.Subject)
	return nil
}
