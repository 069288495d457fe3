package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/afrigis/user-feedback/internal/events"
	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/pkg/auth"
)

// MaxFeedbackBody caps a submission, screenshot included.
const MaxFeedbackBody = 10 << 20

var errMissingData = errors.New("missing data")

// Publisher fans a received submission out to its listeners.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// FeedbackHandler accepts widget submissions.
type FeedbackHandler struct {
	publisher Publisher
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(publisher Publisher) *FeedbackHandler {
	return &FeedbackHandler{publisher: publisher}
}

// Submit handles POST /api/feedback and POST /api/me/feedback.
// The body is either a form with a JSON-encoded "data" field or a JSON
// object {"data": {...}}. The response is a bare "1" or "0"; delivery
// outcomes are never reported back.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFeedbackBody)

	sub, err := decodeSubmission(r)
	if err != nil {
		slog.Warn("feedback rejected", "error", err, "remote_addr", r.RemoteAddr)
		writeResult(w, http.StatusBadRequest, false)
		return
	}

	sub.ID = uuid.NewString()

	if u, ok := auth.UserFromContext(r.Context()); ok {
		if sub.User.Name == "" {
			sub.User.Name = u.Name
		}
		if sub.User.Email == "" {
			sub.User.Email = u.Email
		}
	}

	if err := h.publisher.Publish(r.Context(), events.Event{Name: events.FeedbackReceived, Submission: sub}); err != nil {
		slog.Error("feedback publish failed", "submission_id", sub.ID, "error", err)
		writeResult(w, http.StatusServiceUnavailable, false)
		return
	}

	writeResult(w, http.StatusOK, true)
}

func decodeSubmission(r *http.Request) (*model.FeedbackSubmission, error) {
	var raw []byte

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace(envelope.Data)
		// The widget may send data as a JSON-encoded string.
		if len(raw) > 0 && raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			raw = []byte(strings.TrimSpace(s))
		}
	} else {
		if strings.HasPrefix(ct, "multipart/") {
			if err := r.ParseMultipartForm(MaxFeedbackBody); err != nil {
				return nil, err
			}
		}
		raw = []byte(strings.TrimSpace(r.PostFormValue("data")))
	}

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errMissingData
	}

	var sub model.FeedbackSubmission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func writeResult(w http.ResponseWriter, status int, ok bool) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if ok {
		_, _ = w.Write([]byte("1"))
		return
	}
	_, _ = w.Write([]byte("0"))
}
