package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/afrigis/user-feedback/internal/events"
	"github.com/afrigis/user-feedback/internal/media"
	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/internal/notify"
)

// ---------------------------------------------------------------------------
// mocks
// ---------------------------------------------------------------------------

type mockImageStore struct {
	saveFunc func(ctx context.Context, data []byte) (*model.StoredImage, error)
	saved    [][]byte
}

func (m *mockImageStore) Save(ctx context.Context, data []byte) (*model.StoredImage, error) {
	m.saved = append(m.saved, data)
	if m.saveFunc != nil {
		return m.saveFunc(ctx, data)
	}
	return &model.StoredImage{Path: "/tmp/feedback-2024-01-01-13-05.png"}, nil
}

type mockMailer struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, msg *model.OutboundMessage) error
	sent     []*model.OutboundMessage
}

func (m *mockMailer) Send(ctx context.Context, msg *model.OutboundMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

func (m *mockMailer) byKind(kind model.MessageKind) *model.OutboundMessage {
	for _, msg := range m.sent {
		if msg.Kind == kind {
			return msg
		}
	}
	return nil
}

type mockRecorder struct {
	mu      sync.Mutex
	saveErr error
	records []*model.DeliveryRecord
}

func (m *mockRecorder) Save(ctx context.Context, rec *model.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.saveErr
}

func newTestService(images *mockImageStore, mailer *mockMailer, rec *mockRecorder) FeedbackService {
	composer := notify.NewComposer(notify.Config{SiteName: "Example", AdminEmail: "owner@example.com"}, nil)
	if rec == nil {
		return NewFeedbackService(images, composer, mailer, nil)
	}
	return NewFeedbackService(images, composer, mailer, rec)
}

func validSubmission() *model.FeedbackSubmission {
	return &model.FeedbackSubmission{
		Browser:  model.Browser{Name: "Chrome", UserAgent: "Mozilla/5.0"},
		URL:      "https://example.com/",
		Image:    "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		Message:  "Broken button",
		User:     model.Submitter{Name: "Ada", Email: "ada@example.com"},
		Language: "en",
	}
}

// ---------------------------------------------------------------------------
// Process tests
// ---------------------------------------------------------------------------

func TestFeedbackService_Process_NilIsEmptyPayload(t *testing.T) {
	images, mailer := &mockImageStore{}, &mockMailer{}
	svc := newTestService(images, mailer, nil)

	_, err := svc.Process(context.Background(), nil)
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if len(images.saved) != 0 || len(mailer.sent) != 0 {
		t.Error("no downstream effects expected")
	}
}

func TestFeedbackService_Process_SendsBothCopies(t *testing.T) {
	images, mailer, rec := &mockImageStore{}, &mockMailer{}, &mockRecorder{}
	svc := newTestService(images, mailer, rec)

	res, err := svc.Process(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != model.StateDone {
		t.Errorf("expected done, got %s", res.State)
	}
	if res.SubmissionID == "" {
		t.Error("expected a submission id")
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mailer.sent))
	}
	owner := mailer.byKind(model.OwnerCopy)
	submitter := mailer.byKind(model.SubmitterCopy)
	if owner == nil || owner.Recipient != "owner@example.com" {
		t.Errorf("unexpected owner message %+v", owner)
	}
	if submitter == nil || submitter.Recipient != "ada@example.com" {
		t.Errorf("unexpected submitter message %+v", submitter)
	}
	for _, m := range mailer.sent {
		if len(m.Attachments) != 1 || m.Attachments[0] != "/tmp/feedback-2024-01-01-13-05.png" {
			t.Errorf("%s: expected screenshot attachment, got %v", m.Kind, m.Attachments)
		}
	}
	if len(rec.records) != 2 {
		t.Fatalf("expected 2 delivery records, got %d", len(rec.records))
	}
	for _, r := range rec.records {
		if r.Status != model.DeliverySent || r.SubmissionID != res.SubmissionID {
			t.Errorf("unexpected record %+v", r)
		}
	}
}

func TestFeedbackService_Process_DecodedLengthReachesStore(t *testing.T) {
	images, mailer := &mockImageStore{}, &mockMailer{}
	svc := newTestService(images, mailer, nil)

	raw := []byte(strings.Repeat("\x00\x01\x02", 100))
	sub := validSubmission()
	sub.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	if _, err := svc.Process(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images.saved) != 1 || len(images.saved[0]) != len(raw) {
		t.Errorf("expected %d bytes stored, got %v", len(raw), len(images.saved))
	}
}

// name "", email "bad": submitter copy skipped, owner sent as Anonymous.
func TestFeedbackService_Process_InvalidEmailScenario(t *testing.T) {
	images, mailer := &mockImageStore{}, &mockMailer{}
	svc := newTestService(images, mailer, nil)

	sub := &model.FeedbackSubmission{
		User:    model.Submitter{Name: "", Email: "bad"},
		Message: "Broken button",
		Image:   "data:image/png;base64,AAAA",
	}
	res, err := svc.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected only the owner message, got %d", len(mailer.sent))
	}
	owner := mailer.sent[0]
	if owner.Kind != model.OwnerCopy {
		t.Errorf("expected owner copy, got %s", owner.Kind)
	}
	if !strings.Contains(owner.Body, "Name: Anonymous") {
		t.Errorf("expected Anonymous in owner body, got %q", owner.Body)
	}
	if res.Submitter != nil || res.SubmitterErr != nil {
		t.Error("skipped submitter copy must not be reported as an error")
	}
	if len(images.saved) != 1 || len(images.saved[0]) != 3 {
		t.Errorf("expected 3 decoded bytes stored, got %v", images.saved)
	}
}

func TestFeedbackService_Process_EmptyImage(t *testing.T) {
	images, mailer := &mockImageStore{}, &mockMailer{}
	svc := newTestService(images, mailer, nil)

	sub := validSubmission()
	sub.Image = ""
	res, err := svc.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != model.StateDone || res.Image != nil || res.ImageErr != nil {
		t.Errorf("unexpected result %+v", res)
	}
	if len(images.saved) != 0 {
		t.Error("store must not be called for an empty image")
	}
	for _, m := range mailer.sent {
		if len(m.Attachments) != 0 {
			t.Errorf("%s: expected no attachment", m.Kind)
		}
	}
}

func TestFeedbackService_Process_InvalidImageDegrades(t *testing.T) {
	images, mailer := &mockImageStore{}, &mockMailer{}
	svc := newTestService(images, mailer, nil)

	sub := validSubmission()
	sub.Image = "not-a-data-url"
	res, err := svc.Process(context.Background(), sub)
	if err != nil {
		t.Fatalf("image errors must not abort: %v", err)
	}
	if !errors.Is(res.ImageErr, media.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", res.ImageErr)
	}
	if len(mailer.sent) != 2 {
		t.Errorf("expected both messages, got %d", len(mailer.sent))
	}
}

func TestFeedbackService_Process_StorageFailureDegrades(t *testing.T) {
	images := &mockImageStore{saveFunc: func(context.Context, []byte) (*model.StoredImage, error) {
		return nil, media.ErrStorageUnavailable
	}}
	mailer := &mockMailer{}
	svc := newTestService(images, mailer, nil)

	res, err := svc.Process(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("storage errors must not abort: %v", err)
	}
	if !errors.Is(res.ImageErr, media.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", res.ImageErr)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected both messages, got %d", len(mailer.sent))
	}
	for _, m := range mailer.sent {
		if len(m.Attachments) != 0 {
			t.Errorf("%s: expected no attachment", m.Kind)
		}
	}
}

func TestFeedbackService_Process_OwnerFailureDoesNotBlockSubmitter(t *testing.T) {
	mailer := &mockMailer{sendFunc: func(ctx context.Context, msg *model.OutboundMessage) error {
		if msg.Kind == model.OwnerCopy {
			return errors.New("smtp down")
		}
		return nil
	}}
	rec := &mockRecorder{}
	svc := newTestService(&mockImageStore{}, mailer, rec)

	res, err := svc.Process(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("mail errors must not surface: %v", err)
	}
	if res.OwnerErr == nil {
		t.Error("expected owner error in result")
	}
	if res.SubmitterErr != nil {
		t.Errorf("submitter send should succeed, got %v", res.SubmitterErr)
	}
	if len(mailer.sent) != 2 {
		t.Errorf("expected both sends attempted once, got %d", len(mailer.sent))
	}

	var failed int
	for _, r := range rec.records {
		if r.Status == model.DeliveryFailed {
			failed++
			if r.Kind != model.OwnerCopy || r.Error == "" {
				t.Errorf("unexpected failed record %+v", r)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed record, got %d", failed)
	}
}

func TestFeedbackService_Process_RecorderErrorIgnored(t *testing.T) {
	rec := &mockRecorder{saveErr: errors.New("db down")}
	mailer := &mockMailer{}
	svc := newTestService(&mockImageStore{}, mailer, rec)

	res, err := svc.Process(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OwnerErr != nil || res.SubmitterErr != nil {
		t.Error("recorder failures must not mark sends as failed")
	}
}

func TestFeedbackService_Process_KeepsExistingID(t *testing.T) {
	svc := newTestService(&mockImageStore{}, &mockMailer{}, nil)
	sub := validSubmission()
	sub.ID = "fixed-id"

	res, _ := svc.Process(context.Background(), sub)
	if res.SubmissionID != "fixed-id" {
		t.Errorf("expected fixed-id, got %q", res.SubmissionID)
	}
}

// ---------------------------------------------------------------------------
// HandleEvent
// ---------------------------------------------------------------------------

func TestFeedbackService_HandleEvent(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestService(&mockImageStore{}, mailer, nil)

	bus := events.NewBus()
	if err := bus.Subscribe("pipeline", svc); err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(context.Background(), events.Event{Submission: validSubmission()}); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 2 {
		t.Errorf("expected 2 messages via the bus, got %d", len(mailer.sent))
	}

	if err := svc.HandleEvent(context.Background(), events.Event{}); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("expected ErrEmptyPayload for an empty event, got %v", err)
	}
}

func TestSnapshotTitle(t *testing.T) {
	if got := snapshotTitle("<html><head><title> Pricing | Example </title></head><body></body></html>"); got != "Pricing | Example" {
		t.Errorf("unexpected title %q", got)
	}
	if got := snapshotTitle("<p>no title</p>"); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}

func TestSnapshotTitle_TruncatesOnRuneBoundary(t *testing.T) {
	title := strings.Repeat("a", maxTitleLen-1) + "é and more"
	got := snapshotTitle("<title>" + title + "</title>")
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
	if len(got) > maxTitleLen {
		t.Errorf("expected at most %d bytes, got %d", maxTitleLen, len(got))
	}
	if got != strings.Repeat("a", maxTitleLen-1) {
		t.Errorf("expected cut before the multi-byte rune, got %q", got)
	}
}

func TestLogSnapshot_OnlyAtDebug(t *testing.T) {
	doc := "<html><head><title>Pricing</title></head></html>"

	var info bytes.Buffer
	logSnapshot(context.Background(), slog.New(slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo})), doc)
	if info.Len() != 0 {
		t.Errorf("expected nothing logged at info level, got %q", info.String())
	}

	var debug bytes.Buffer
	logSnapshot(context.Background(), slog.New(slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug})), doc)
	if !strings.Contains(debug.String(), "title=Pricing") {
		t.Errorf("expected title in debug log, got %q", debug.String())
	}
}
