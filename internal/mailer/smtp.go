package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/afrigis/user-feedback/internal/model"
)

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// sender is the subset of *mail.Client used here.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPTransport sends mail over SMTP with opportunistic STARTTLS.
type SMTPTransport struct {
	from        string
	client      sender
	attachments AttachmentOpener
}

// NewSMTPTransport creates an SMTP client from cfg. attachments may be nil,
// in which case messages are sent without files.
func NewSMTPTransport(cfg SMTPConfig, attachments AttachmentOpener) (*SMTPTransport, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: new smtp client: %w", err)
	}
	return &SMTPTransport{from: cfg.From, client: client, attachments: attachments}, nil
}

var _ Transport = (*SMTPTransport)(nil)

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, msg *model.OutboundMessage) error {
	m, err := t.buildMessage(ctx, msg)
	if err != nil {
		return err
	}
	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (t *SMTPTransport) buildMessage(ctx context.Context, msg *model.OutboundMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(t.from); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", t.from, err)
	}
	if err := m.To(msg.Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.Recipient, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}

	if t.attachments == nil {
		return m, nil
	}
	for _, p := range msg.Attachments {
		// a missing screenshot downgrades to a mail without attachment
		if err := t.attach(ctx, m, p); err != nil {
			slog.Warn("attachment skipped", "kind", msg.Kind, "path", p, "error", err)
		}
	}
	return m, nil
}

func (t *SMTPTransport) attach(ctx context.Context, m *mail.Msg, p string) error {
	rc, err := t.attachments.Open(ctx, p)
	if err != nil {
		return err
	}
	defer rc.Close()
	return m.AttachReader(path.Base(p), rc)
}
