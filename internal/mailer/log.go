package mailer

import (
	"context"
	"log/slog"

	"github.com/afrigis/user-feedback/internal/model"
)

// LogTransport writes messages to the structured log instead of sending
// them. It is used when no SMTP host is configured.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport returns a LogTransport. A nil logger uses slog.Default().
func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger}
}

var _ Transport = (*LogTransport)(nil)

// Send implements Transport.
func (t *LogTransport) Send(ctx context.Context, msg *model.OutboundMessage) error {
	t.logger.InfoContext(ctx, "mail not sent (log transport)",
		"kind", msg.Kind,
		"to", msg.Recipient,
		"subject", msg.Subject,
		"attachments", msg.Attachments,
		"body_bytes", len(msg.Body),
	)
	return nil
}
