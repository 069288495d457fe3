package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/internal/repository"
	"github.com/afrigis/user-feedback/pkg/auth"
)

// DeliveryLister reads the outbound delivery records.
type DeliveryLister interface {
	List(ctx context.Context, opts model.DeliveryListOptions) ([]*model.DeliveryRecord, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]*model.DeliveryRecord, error)
}

// DeliveryHandler exposes delivery records to the site owner.
type DeliveryHandler struct {
	deliveries DeliveryLister
	adminEmail string
}

// NewDeliveryHandler creates a DeliveryHandler. Only the user whose email
// matches adminEmail may list records.
func NewDeliveryHandler(deliveries DeliveryLister, adminEmail string) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, adminEmail: adminEmail}
}

type deliveryListResponse struct {
	Deliveries []*model.DeliveryRecord `json:"deliveries"`
}

// AdminList handles GET /api/admin/deliveries.
// Supports query params: status (all/sent/failed), submission_id, limit, offset.
func (h *DeliveryHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.adminEmail == "" || !strings.EqualFold(u.Email, h.adminEmail) {
		writeJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	q := r.URL.Query()

	var (
		records []*model.DeliveryRecord
		err     error
	)
	if id := q.Get("submission_id"); id != "" {
		records, err = h.deliveries.ListBySubmission(r.Context(), id)
	} else {
		opts := model.DeliveryListOptions{
			Status: q.Get("status"),
			Limit:  20,
			Offset: 0,
		}
		if l := q.Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
				opts.Limit = n
			}
		}
		if o := q.Get("offset"); o != "" {
			if n, err := strconv.Atoi(o); err == nil && n >= 0 {
				opts.Offset = n
			}
		}
		records, err = h.deliveries.List(r.Context(), opts)
	}
	if errors.Is(err, repository.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "list_failed")
		return
	}

	// Return [] not null for empty lists
	if records == nil {
		records = []*model.DeliveryRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(deliveryListResponse{Deliveries: records})
}

func writeJSONError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
