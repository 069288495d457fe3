package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/internal/repository"
	"github.com/afrigis/user-feedback/pkg/auth"
)

// ImageOpener reads a stored screenshot back.
type ImageOpener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// ScreenshotHandler serves the screenshot attached to a submission's
// notification. Only locations recorded on a delivery can be read.
type ScreenshotHandler struct {
	deliveries DeliveryLister
	images     ImageOpener
	adminEmail string
}

// NewScreenshotHandler creates a ScreenshotHandler.
func NewScreenshotHandler(deliveries DeliveryLister, images ImageOpener, adminEmail string) *ScreenshotHandler {
	return &ScreenshotHandler{deliveries: deliveries, images: images, adminEmail: adminEmail}
}

// Get handles GET /api/admin/deliveries/{id}/screenshot where id is the
// submission id.
func (h *ScreenshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.adminEmail == "" || !strings.EqualFold(u.Email, h.adminEmail) {
		writeJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "id_required")
		return
	}

	records, err := h.deliveries.ListBySubmission(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	location := attachmentOf(records)
	if location == "" {
		writeJSONError(w, http.StatusNotFound, "not_found")
		return
	}

	rc, err := h.images.Open(r.Context(), location)
	if err != nil {
		slog.Warn("screenshot open failed", "submission_id", id, "location", location, "error", err)
		writeJSONError(w, http.StatusNotFound, "not_found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(location)+`"`)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("screenshot write failed", "submission_id", id, "error", err)
	}
}

func attachmentOf(records []*model.DeliveryRecord) string {
	for _, rec := range records {
		if rec.Attachment != "" {
			return rec.Attachment
		}
	}
	return ""
}
