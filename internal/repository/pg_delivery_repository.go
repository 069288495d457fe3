package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afrigis/user-feedback/internal/model"
)

// PgDeliveryRepository is the PostgreSQL implementation of DeliveryRepository.
type PgDeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeliveryRepository creates a PgDeliveryRepository backed by the given pool.
func NewPgDeliveryRepository(pool *pgxpool.Pool) *PgDeliveryRepository {
	return &PgDeliveryRepository{pool: pool}
}

// Ensure PgDeliveryRepository implements DeliveryRepository at compile time.
var _ DeliveryRepository = (*PgDeliveryRepository)(nil)

// Save inserts a feedback_deliveries row and populates rec.ID and CreatedAt
// from the RETURNING clause.
func (r *PgDeliveryRepository) Save(ctx context.Context, rec *model.DeliveryRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO feedback_deliveries (submission_id, kind, recipient, subject, status, error, attachment)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		 RETURNING id, created_at`,
		rec.SubmissionID, string(rec.Kind), rec.Recipient, rec.Subject, rec.Status, rec.Error, rec.Attachment,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// ListBySubmission returns the deliveries recorded for one submission, oldest first.
func (r *PgDeliveryRepository) ListBySubmission(ctx context.Context, submissionID string) ([]*model.DeliveryRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, submission_id, kind, recipient, subject, status,
		        COALESCE(error, ''), COALESCE(attachment, ''), created_at
		 FROM feedback_deliveries
		 WHERE submission_id = $1
		 ORDER BY created_at ASC`,
		submissionID,
	)
	if err != nil {
		return nil, err
	}
	out, err := collectDeliveries(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// List returns deliveries filtered by status, newest first.
// Status "" or "all" returns every row.
func (r *PgDeliveryRepository) List(ctx context.Context, opts model.DeliveryListOptions) ([]*model.DeliveryRecord, error) {
	var args []any
	where := ""
	if opts.Status != "" && opts.Status != "all" {
		args = append(args, opts.Status)
		where = "WHERE status = $1"
	}
	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.pool.Query(ctx,
		`SELECT id, submission_id, kind, recipient, subject, status,
		        COALESCE(error, ''), COALESCE(attachment, ''), created_at
		 FROM feedback_deliveries `+where+`
		 ORDER BY created_at DESC
		 LIMIT $`+limitArg+` OFFSET $`+offsetArg,
		args...,
	)
	if err != nil {
		return nil, err
	}
	return collectDeliveries(rows)
}

func collectDeliveries(rows pgx.Rows) ([]*model.DeliveryRecord, error) {
	defer rows.Close()
	var out []*model.DeliveryRecord
	for rows.Next() {
		var d model.DeliveryRecord
		var kind string
		if err := rows.Scan(&d.ID, &d.SubmissionID, &kind, &d.Recipient, &d.Subject, &d.Status, &d.Error, &d.Attachment, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Kind = model.MessageKind(kind)
		out = append(out, &d)
	}
	return out, rows.Err()
}
