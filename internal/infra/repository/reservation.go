package repository

import (
	"context"

	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/infra/repository/converter"
	"refund-settlement-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	selectReservationForUpdate = `SELECT ` + converter.ReservationColumns + `
		FROM reservations r WHERE r.id = $1 FOR UPDATE`

	updateReservationCancellation = `UPDATE reservations
		SET status = $2, cancellation_reason = $3, cancellation_note = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1`

	selectPaymentByReservation = `SELECT ` + converter.PaymentColumns + `
		FROM payments p WHERE p.reservation_id = $1`
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var row converter.ReservationRow
	if err := r.db.QueryRow(ctx, selectReservationForUpdate, id).Scan(row.Dest()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "reservation not found", err)
		}
		return nil, infra.ClassifyPgErr("failed to lock reservation", err)
	}
	return row.ToDomain(), nil
}

func (r *ReservationRepository) SaveCancellation(ctx context.Context, res *reservation.Reservation) error {
	rec := res.Record()
	tag, err := r.db.Exec(ctx, updateReservationCancellation,
		rec.ID,
		rec.Status.String(),
		pgconv.StringPtrToPgtype(rec.CancellationReason),
		pgconv.StringPtrToPgtype(rec.CancellationNote),
		pgconv.TimePtrToPgtype(rec.CancelledAt),
		rec.UpdatedAt,
	)
	if err != nil {
		return infra.ClassifyPgErr("failed to save reservation cancellation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindNotFound, "reservation not found", nil)
	}
	return nil
}

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(dbtx db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: dbtx}
}

func (r *PaymentRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*reservation.Payment, error) {
	return FindPayment(ctx, r.db, reservationID)
}

// FindPayment is shared with the read side.
func FindPayment(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*reservation.Payment, error) {
	var row converter.PaymentRow
	if err := dbtx.QueryRow(ctx, selectPaymentByReservation, reservationID).Scan(row.Dest()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "payment not found", err)
		}
		return nil, infra.ClassifyPgErr("failed to get payment", err)
	}
	return row.ToDomain(), nil
}
