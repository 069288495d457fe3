package notify

import (
	"strings"
	"testing"

	"github.com/afrigis/user-feedback/internal/hooks"
	"github.com/afrigis/user-feedback/internal/model"
)

func testSubmission() *model.FeedbackSubmission {
	return &model.FeedbackSubmission{
		Browser:  model.Browser{Name: "Firefox", UserAgent: "Mozilla/5.0", Online: true},
		URL:      "https://example.com/pricing",
		Message:  "The \\\"Buy\\\" button doesn\\'t work",
		User:     model.Submitter{Name: "Ada", Email: "ada@example.com"},
		Language: "en-US",
	}
}

func newTestComposer(filters *hooks.Chain[string]) *Composer {
	return NewComposer(Config{SiteName: "Example", AdminEmail: "owner@example.com"}, filters)
}

func TestCompose_OwnerCopy(t *testing.T) {
	c := newTestComposer(nil)
	img := &model.StoredImage{Path: "/tmp/feedback-2024-01-01-13-05.png"}

	msg, ok, err := c.Compose(testSubmission(), model.OwnerCopy, img)
	if err != nil || !ok {
		t.Fatalf("Compose: ok=%v err=%v", ok, err)
	}
	if msg.Recipient != "owner@example.com" {
		t.Errorf("recipient: got %q", msg.Recipient)
	}
	if msg.Subject != "[Example] New User Feedback" {
		t.Errorf("subject: got %q", msg.Subject)
	}

	want := "Howdy,\r\n\r\n" +
		"You just received a new user feedback regarding your website!\r\n\r\n" +
		"Name: Ada\r\n" +
		"Email: ada@example.com\r\n" +
		"Browser: Firefox (Mozilla/5.0)\r\n" +
		"Visited URL: https://example.com/pricing\r\n" +
		"Site Language: en-US\r\n" +
		"Additional Notes:\r\n" +
		"The \"Buy\" button doesn't work\r\n\r\n" +
		"A screenshot of the visited page is attached.\r\n"
	if msg.Body != want {
		t.Errorf("body mismatch:\nwant %q\ngot  %q", want, msg.Body)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0] != img.Path {
		t.Errorf("attachments: got %v", msg.Attachments)
	}
}

func TestCompose_SubmitterCopy(t *testing.T) {
	c := newTestComposer(nil)

	msg, ok, err := c.Compose(testSubmission(), model.SubmitterCopy, nil)
	if err != nil || !ok {
		t.Fatalf("Compose: ok=%v err=%v", ok, err)
	}
	if msg.Recipient != "ada@example.com" {
		t.Errorf("recipient: got %q", msg.Recipient)
	}
	if msg.Subject != "[Example] Your Feedback" {
		t.Errorf("subject: got %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "We just received the following feedback from you") {
		t.Errorf("expected second-person intro, got %q", msg.Body)
	}
	if strings.Contains(msg.Body, "Site Language") {
		t.Error("submitter copy must not include the language field")
	}
	if !strings.Contains(msg.Body, "Browser: Firefox\r\n") {
		t.Errorf("expected browser name without user agent, got %q", msg.Body)
	}
	if strings.Contains(msg.Body, "screenshot") || len(msg.Attachments) != 0 {
		t.Error("no screenshot line or attachment expected without an image")
	}
}

func TestCompose_AnonymousDefaults(t *testing.T) {
	c := newTestComposer(nil)
	sub := testSubmission()
	sub.User = model.Submitter{}

	msg, ok, _ := c.Compose(sub, model.OwnerCopy, nil)
	if !ok {
		t.Fatal("owner copy must always be produced")
	}
	if !strings.Contains(msg.Body, "Name: Anonymous\r\n") {
		t.Errorf("expected Anonymous, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Email: (not provided)\r\n") {
		t.Errorf("expected (not provided), got %q", msg.Body)
	}

	if _, ok, _ := c.Compose(sub, model.SubmitterCopy, nil); ok {
		t.Error("submitter copy must be skipped without an email")
	}
}

func TestCompose_InvalidEmailSkipsSubmitterOnly(t *testing.T) {
	c := newTestComposer(nil)
	sub := &model.FeedbackSubmission{
		User:    model.Submitter{Name: "", Email: "bad"},
		Message: "Broken button",
		Image:   "data:image/png;base64,AAAA",
	}

	owner, ok, _ := c.Compose(sub, model.OwnerCopy, nil)
	if !ok {
		t.Fatal("owner copy expected")
	}
	if !strings.Contains(owner.Body, "Name: Anonymous\r\n") || !strings.Contains(owner.Body, "Email: bad\r\n") {
		t.Errorf("unexpected owner body %q", owner.Body)
	}
	if msg, ok, _ := c.Compose(sub, model.SubmitterCopy, nil); ok || msg != nil {
		t.Error("submitter copy must be skipped for an invalid email")
	}
}

func TestCompose_SubmitterAddressIsTrimmed(t *testing.T) {
	c := newTestComposer(nil)
	sub := testSubmission()
	sub.User.Email = "  ada@example.com \t"

	msg, ok, err := c.Compose(sub, model.SubmitterCopy, nil)
	if err != nil || !ok {
		t.Fatalf("Compose: ok=%v err=%v", ok, err)
	}
	if msg.Recipient != "ada@example.com" {
		t.Errorf("recipient: got %q", msg.Recipient)
	}

	owner, _, _ := c.Compose(sub, model.OwnerCopy, nil)
	if !strings.Contains(owner.Body, "Email: ada@example.com\r\n") {
		t.Errorf("owner body should carry the trimmed address:\n%q", owner.Body)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	c := newTestComposer(nil)
	sub := testSubmission()
	img := &model.StoredImage{Path: "/tmp/feedback.png"}

	for _, kind := range []model.MessageKind{model.OwnerCopy, model.SubmitterCopy} {
		a, _, _ := c.Compose(sub, kind, img)
		b, _, _ := c.Compose(sub, kind, img)
		if a.Body != b.Body || a.HTMLBody != b.HTMLBody || a.Subject != b.Subject || a.Recipient != b.Recipient {
			t.Errorf("%s: composing twice gave different output", kind)
		}
	}
}

func TestCompose_HTMLBodyEscapesMessage(t *testing.T) {
	c := newTestComposer(nil)
	sub := testSubmission()
	sub.Message = `<script>alert(1)</script>`

	msg, _, _ := c.Compose(sub, model.OwnerCopy, nil)
	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Errorf("html body must escape the message, got %q", msg.HTMLBody)
	}
	if !strings.Contains(msg.HTMLBody, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag, got %q", msg.HTMLBody)
	}
}

func TestCompose_FiltersOverrideDefaults(t *testing.T) {
	filters := hooks.NewChain[string]()
	filters.Add(hooks.EmailAddress, hooks.Const("support@example.com"))
	filters.Add(hooks.EmailSubject, func(s string) string { return s + " (priority)" })
	filters.Add(hooks.EmailCopyAddress, hooks.Const("copies@example.com"))
	filters.Add(hooks.EmailCopyMessage, hooks.Const("Thanks!"))
	c := newTestComposer(filters)

	owner, _, _ := c.Compose(testSubmission(), model.OwnerCopy, nil)
	if owner.Recipient != "support@example.com" {
		t.Errorf("owner recipient: got %q", owner.Recipient)
	}
	if owner.Subject != "[Example] New User Feedback (priority)" {
		t.Errorf("owner subject: got %q", owner.Subject)
	}
	if owner.HTMLBody == "" {
		t.Error("owner html body should be kept when the body is not filtered")
	}

	copyMsg, _, _ := c.Compose(testSubmission(), model.SubmitterCopy, nil)
	if copyMsg.Recipient != "copies@example.com" || copyMsg.Body != "Thanks!" {
		t.Errorf("unexpected submitter copy %+v", copyMsg)
	}
	if copyMsg.HTMLBody != "" {
		t.Error("html body must be dropped when the text body is filtered")
	}
}

func TestCompose_UnknownKind(t *testing.T) {
	c := newTestComposer(nil)
	if _, _, err := c.Compose(testSubmission(), model.MessageKind("other"), nil); err == nil {
		t.Error("expected error for unknown kind")
	}
}
