package email

import (
	"context"
	"log/slog"
	"strings"
)

// Message is a plain-text email to one or more recipients.
type Message struct {
	To      []string
	Subject string
	Text    string
}

// Sender delivers email. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is
// used in development when no provider is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	s.logger.Info("email (not sent)",
		"to", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
