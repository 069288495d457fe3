package repository

import (
	"context"
	"errors"

	"github.com/afrigis/user-feedback/internal/model"
)

// ErrNotFound is returned when no delivery matches the lookup.
var ErrNotFound = errors.New("not found")

// DeliveryRepository persists the outbound record of each sent notification.
type DeliveryRepository interface {
	Save(ctx context.Context, rec *model.DeliveryRecord) error
	// ListBySubmission returns ErrNotFound when the submission has no records.
	ListBySubmission(ctx context.Context, submissionID string) ([]*model.DeliveryRecord, error)
	List(ctx context.Context, opts model.DeliveryListOptions) ([]*model.DeliveryRecord, error)
}

// NopDeliveryRepository discards records. It is used when no database is configured.
type NopDeliveryRepository struct{}

var _ DeliveryRepository = NopDeliveryRepository{}

func (NopDeliveryRepository) Save(context.Context, *model.DeliveryRecord) error { return nil }

func (NopDeliveryRepository) ListBySubmission(context.Context, string) ([]*model.DeliveryRecord, error) {
	return nil, ErrNotFound
}

func (NopDeliveryRepository) List(context.Context, model.DeliveryListOptions) ([]*model.DeliveryRecord, error) {
	return nil, nil
}
