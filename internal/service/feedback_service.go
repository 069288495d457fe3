package service

import (
	"context"
	"errors"

	"github.com/afrigis/user-feedback/internal/events"
	"github.com/afrigis/user-feedback/internal/model"
)

// ErrEmptyPayload is returned when there is no submission to process.
var ErrEmptyPayload = errors.New("empty payload")

// FeedbackService runs the submission pipeline: store the screenshot,
// compose the owner and submitter emails, and send them.
type FeedbackService interface {
	// Process runs one submission through the pipeline. The only error it
	// returns is ErrEmptyPayload; image, storage and mail failures are
	// reported in the Result and logged.
	Process(ctx context.Context, sub *model.FeedbackSubmission) (*model.Result, error)

	// HandleEvent subscribes the pipeline to the "feedback received" event.
	HandleEvent(ctx context.Context, ev events.Event) error
}

// ImageStore writes decoded screenshots.
type ImageStore interface {
	Save(ctx context.Context, data []byte) (*model.StoredImage, error)
}

// MessageComposer renders owner and submitter messages.
type MessageComposer interface {
	Compose(sub *model.FeedbackSubmission, kind model.MessageKind, image *model.StoredImage) (*model.OutboundMessage, bool, error)
}

// Mailer sends one message without retrying.
type Mailer interface {
	Send(ctx context.Context, msg *model.OutboundMessage) error
}

// DeliveryRecorder keeps the outbound record of each send.
type DeliveryRecorder interface {
	Save(ctx context.Context, rec *model.DeliveryRecord) error
}
