package repository

import (
	"context"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/infra/repository/converter"
	"refund-settlement-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	selectRefundForUpdate = `SELECT ` + converter.RefundColumns + `
		FROM refunds f WHERE f.id = $1 FOR UPDATE`

	selectRefundByReservation = `SELECT ` + converter.RefundColumns + `
		FROM refunds f WHERE f.reservation_id = $1`

	insertRefund = `INSERT INTO refunds (id, reservation_id, original_amount, refund_amount, fee_amount,
			applied_fee_rate, hours_before_start, refund_method, refund_reason, refund_status, retry_count,
			transaction_id, failure_reason, admin_note, processed_by, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	// Amounts and identity never change after creation.
	updateRefund = `UPDATE refunds SET
			refund_status = $2, retry_count = $3, transaction_id = $4, failure_reason = $5,
			admin_note = $6, processed_by = $7, processed_at = $8, updated_at = $9
		WHERE id = $1`

	insertRefundLog = `INSERT INTO refund_logs (refund_id, previous_status, new_status, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

type RefundRepository struct {
	db db.DBTX
}

func NewRefundRepository(dbtx db.DBTX) *RefundRepository {
	return &RefundRepository{db: dbtx}
}

func (r *RefundRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*refund.Refund, error) {
	return r.findOne(ctx, selectRefundForUpdate, id)
}

func (r *RefundRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*refund.Refund, error) {
	return r.findOne(ctx, selectRefundByReservation, reservationID)
}

func (r *RefundRepository) findOne(ctx context.Context, query string, arg uuid.UUID) (*refund.Refund, error) {
	var row converter.RefundRow
	if err := r.db.QueryRow(ctx, query, arg).Scan(row.Dest()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "refund not found", err)
		}
		return nil, infra.ClassifyPgErr("failed to get refund", err)
	}
	return row.ToDomain(), nil
}

// Create returns DUPLICATE_KEY when the reservation already has a refund.
func (r *RefundRepository) Create(ctx context.Context, f *refund.Refund) error {
	if _, err := r.db.Exec(ctx, insertRefund, converter.RefundArgs(f)...); err != nil {
		return infra.ClassifyPgErr("failed to create refund", err)
	}
	return nil
}

func (r *RefundRepository) Update(ctx context.Context, f *refund.Refund) error {
	rec := f.Record()
	tag, err := r.db.Exec(ctx, updateRefund,
		rec.ID,
		rec.Status.String(),
		rec.RetryCount,
		pgconv.StringPtrToPgtype(rec.TransactionID),
		pgconv.StringPtrToPgtype(rec.FailureReason),
		pgconv.StringPtrToPgtype(rec.AdminNote),
		pgconv.StringPtrToPgtype(rec.ProcessedBy),
		pgconv.TimePtrToPgtype(rec.ProcessedAt),
		rec.UpdatedAt,
	)
	if err != nil {
		return infra.ClassifyPgErr("failed to update refund", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindNotFound, "refund not found", nil)
	}
	return nil
}

type RefundLogRepository struct {
	db db.DBTX
}

func NewRefundLogRepository(dbtx db.DBTX) *RefundLogRepository {
	return &RefundLogRepository{db: dbtx}
}

func (r *RefundLogRepository) Append(ctx context.Context, entries ...refund.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertRefundLog,
			e.RefundID, converter.StatusPtrToPgtype(e.PreviousStatus), e.NewStatus.String(), e.Reason, e.Actor, e.CreatedAt)
	}
	if err := sendBatch(ctx, r.db, batch); err != nil {
		return infra.ClassifyPgErr("failed to append refund log", err)
	}
	return nil
}

type batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// sendBatch pipelines when the handle supports it and falls back to one
// statement per entry otherwise.
func sendBatch(ctx context.Context, dbtx db.DBTX, batch *pgx.Batch) error {
	if b, ok := dbtx.(batcher); ok {
		return b.SendBatch(ctx, batch).Close()
	}
	for _, q := range batch.QueuedQueries {
		if _, err := dbtx.Exec(ctx, q.SQL, q.Arguments...); err != nil {
			return err
		}
	}
	return nil
}
