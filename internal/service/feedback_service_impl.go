package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/afrigis/user-feedback/internal/events"
	"github.com/afrigis/user-feedback/internal/media"
	"github.com/afrigis/user-feedback/internal/model"
)

// feedbackServiceImpl is the production implementation of FeedbackService.
type feedbackServiceImpl struct {
	images   ImageStore
	composer MessageComposer
	mailer   Mailer
	records  DeliveryRecorder
	logger   *slog.Logger
}

// NewFeedbackService wires the pipeline. records may be nil when deliveries
// are not persisted.
func NewFeedbackService(images ImageStore, composer MessageComposer, mailer Mailer, records DeliveryRecorder) FeedbackService {
	return &feedbackServiceImpl{
		images:   images,
		composer: composer,
		mailer:   mailer,
		records:  records,
		logger:   slog.Default().With("component", "feedback_pipeline"),
	}
}

func (s *feedbackServiceImpl) HandleEvent(ctx context.Context, ev events.Event) error {
	_, err := s.Process(ctx, ev.Submission)
	return err
}

func (s *feedbackServiceImpl) Process(ctx context.Context, sub *model.FeedbackSubmission) (*model.Result, error) {
	if sub == nil {
		return nil, ErrEmptyPayload
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	log := s.logger.With("submission_id", sub.ID)
	res := &model.Result{SubmissionID: sub.ID, State: model.StateReceived}

	logSnapshot(ctx, log, sub.HTML)

	res.State = model.StateImageProcessing
	res.Image, res.ImageErr = s.storeImage(ctx, sub.Image)
	if res.ImageErr != nil {
		log.Warn("screenshot dropped", "error", res.ImageErr)
	}

	res.State = model.StateComposing
	owner, _, err := s.composer.Compose(sub, model.OwnerCopy, res.Image)
	if err != nil {
		res.OwnerErr = err
		log.Error("compose owner copy failed", "error", err)
	}
	res.Owner = owner

	submitter, ok, err := s.composer.Compose(sub, model.SubmitterCopy, res.Image)
	switch {
	case err != nil:
		res.SubmitterErr = err
		log.Error("compose submitter copy failed", "error", err)
	case !ok:
		log.Debug("submitter copy skipped", "reason", "invalid_email")
	default:
		res.Submitter = submitter
	}

	// Owner and submitter sends are independent; neither blocks the other.
	res.State = model.StateSendingOwner
	var g errgroup.Group
	if res.Owner != nil {
		g.Go(func() error {
			res.OwnerErr = s.deliver(ctx, log, sub.ID, res.Owner)
			return nil
		})
	}
	if res.Submitter != nil {
		res.State = model.StateSendingCopy
		g.Go(func() error {
			res.SubmitterErr = s.deliver(ctx, log, sub.ID, res.Submitter)
			return nil
		})
	}
	_ = g.Wait()

	res.State = model.StateDone
	log.Info("feedback processed",
		"attachment", res.Image != nil,
		"owner_sent", res.Owner != nil && res.OwnerErr == nil,
		"submitter_sent", res.Submitter != nil && res.SubmitterErr == nil,
	)
	return res, nil
}

// storeImage decodes and stores the screenshot. An empty data URL is not an
// error; it simply yields no attachment.
func (s *feedbackServiceImpl) storeImage(ctx context.Context, dataURL string) (*model.StoredImage, error) {
	if dataURL == "" {
		return nil, nil
	}
	data, err := media.Decode(dataURL)
	if err != nil {
		return nil, err
	}
	return s.images.Save(ctx, data)
}

func (s *feedbackServiceImpl) deliver(ctx context.Context, log *slog.Logger, submissionID string, msg *model.OutboundMessage) error {
	err := s.mailer.Send(ctx, msg)
	if err != nil {
		log.Error("mail send failed", "kind", msg.Kind, "recipient", msg.Recipient, "error", err)
	}
	s.record(ctx, log, submissionID, msg, err)
	return err
}

func (s *feedbackServiceImpl) record(ctx context.Context, log *slog.Logger, submissionID string, msg *model.OutboundMessage, sendErr error) {
	if s.records == nil {
		return
	}
	rec := &model.DeliveryRecord{
		SubmissionID: submissionID,
		Kind:         msg.Kind,
		Recipient:    msg.Recipient,
		Subject:      msg.Subject,
		Status:       model.DeliverySent,
	}
	if sendErr != nil {
		rec.Status = model.DeliveryFailed
		rec.Error = sendErr.Error()
	}
	if len(msg.Attachments) > 0 {
		rec.Attachment = msg.Attachments[0]
	}
	if err := s.records.Save(ctx, rec); err != nil {
		log.Warn("delivery record not saved", "kind", msg.Kind, "error", err)
	}
}
