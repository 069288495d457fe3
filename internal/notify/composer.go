// Package notify builds the owner and submitter emails for a feedback submission.
package notify

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/afrigis/user-feedback/internal/hooks"
	"github.com/afrigis/user-feedback/internal/model"
)

const (
	anonymousName = "Anonymous"
	missingEmail  = "(not provided)"
)

// Config holds the site-level values the composer needs.
type Config struct {
	SiteName   string
	AdminEmail string
}

// Composer renders OutboundMessages. It is safe for concurrent use.
type Composer struct {
	cfg     Config
	filters *hooks.Chain[string]
}

// NewComposer creates a Composer. filters may be nil.
func NewComposer(cfg Config, filters *hooks.Chain[string]) *Composer {
	if filters == nil {
		filters = hooks.NewChain[string]()
	}
	return &Composer{cfg: cfg, filters: filters}
}

type view struct {
	Name        string
	Email       string
	BrowserName string
	UserAgent   string
	URL         string
	Language    string
	Message     string
	Screenshot  string
}

func newView(sub *model.FeedbackSubmission, image *model.StoredImage) view {
	v := view{
		Name:        Unescape(sub.User.Name),
		Email:       strings.TrimSpace(Unescape(sub.User.Email)),
		BrowserName: sub.Browser.Name,
		UserAgent:   sub.Browser.UserAgent,
		URL:         sub.URL,
		Language:    sub.Language,
		Message:     Unescape(sub.Message),
	}
	if v.Name == "" {
		v.Name = anonymousName
	}
	if v.Email == "" {
		v.Email = missingEmail
	}
	if image != nil {
		v.Screenshot = path.Base(image.Path)
	}
	return v
}

// Compose renders the message of the given kind. For SubmitterCopy the second
// return value is false, and no message is built, when the submitter's email
// is not a valid address.
func (c *Composer) Compose(sub *model.FeedbackSubmission, kind model.MessageKind, image *model.StoredImage) (*model.OutboundMessage, bool, error) {
	v := newView(sub, image)

	var (
		recipient, subject string
		addrHook           string
		subjectHook        string
		bodyHook           string
	)
	textTpl, htmlTpl := ownerText, ownerHTML

	switch kind {
	case model.OwnerCopy:
		recipient = c.cfg.AdminEmail
		subject = fmt.Sprintf("[%s] New User Feedback", c.cfg.SiteName)
		addrHook, subjectHook, bodyHook = hooks.EmailAddress, hooks.EmailSubject, hooks.EmailMessage
	case model.SubmitterCopy:
		if !ValidEmail(v.Email) {
			return nil, false, nil
		}
		recipient = v.Email
		subject = fmt.Sprintf("[%s] Your Feedback", c.cfg.SiteName)
		addrHook, subjectHook, bodyHook = hooks.EmailCopyAddress, hooks.EmailCopySubject, hooks.EmailCopyMessage
		textTpl, htmlTpl = submitterText, submitterHTML
	default:
		return nil, false, fmt.Errorf("notify: unknown message kind %q", kind)
	}

	var text, html bytes.Buffer
	if err := textTpl.Execute(&text, v); err != nil {
		return nil, false, fmt.Errorf("notify: render %s text: %w", kind, err)
	}
	if err := htmlTpl.Execute(&html, v); err != nil {
		return nil, false, fmt.Errorf("notify: render %s html: %w", kind, err)
	}

	msg := &model.OutboundMessage{
		Kind:      kind,
		Recipient: c.filters.Apply(addrHook, recipient),
		Subject:   c.filters.Apply(subjectHook, subject),
		Body:      c.filters.Apply(bodyHook, text.String()),
		HTMLBody:  html.String(),
	}
	if c.filters.Len(bodyHook) > 0 {
		// an overridden body would disagree with the default HTML part
		msg.HTMLBody = ""
	}
	if image != nil {
		msg.Attachments = []string{image.Path}
	}
	return msg, true, nil
}
