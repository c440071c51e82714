// Package converter maps between pgx row shapes and domain records.
package converter

import (
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const ReservationColumns = `r.id, r.cafe_id, r.seat_id, r.user_id, r.start_time, r.end_time, r.total_price,
	r.status, r.cancellation_reason, r.cancellation_note, r.cancelled_at, r.created_at, r.updated_at`

type ReservationRow struct {
	ID                 uuid.UUID
	CafeID             uuid.UUID
	SeatID             uuid.UUID
	UserID             uuid.UUID
	StartTime          time.Time
	EndTime            time.Time
	TotalPrice         int64
	Status             string
	CancellationReason pgtype.Text
	CancellationNote   pgtype.Text
	CancelledAt        pgtype.Timestamptz
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Dest returns scan targets in ReservationColumns order.
func (r *ReservationRow) Dest() []any {
	return []any{
		&r.ID, &r.CafeID, &r.SeatID, &r.UserID, &r.StartTime, &r.EndTime, &r.TotalPrice,
		&r.Status, &r.CancellationReason, &r.CancellationNote, &r.CancelledAt, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *ReservationRow) ToDomain() *reservation.Reservation {
	return reservation.Reconstruct(reservation.Record{
		ID:                 r.ID,
		CafeID:             r.CafeID,
		SeatID:             r.SeatID,
		UserID:             r.UserID,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		TotalPrice:         r.TotalPrice,
		Status:             reservation.Status(r.Status),
		CancellationReason: pgconv.StringPtrFromPgtype(r.CancellationReason),
		CancellationNote:   pgconv.StringPtrFromPgtype(r.CancellationNote),
		CancelledAt:        pgconv.TimePtrFromPgtype(r.CancelledAt),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	})
}

const PaymentColumns = `p.id, p.reservation_id, p.transaction_id, p.amount, p.payment_method, p.payment_status, p.paid_at`

type PaymentRow struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	TransactionID string
	Amount        int64
	Method        string
	Status        string
	PaidAt        pgtype.Timestamptz
}

func (r *PaymentRow) Dest() []any {
	return []any{&r.ID, &r.ReservationID, &r.TransactionID, &r.Amount, &r.Method, &r.Status, &r.PaidAt}
}

func (r *PaymentRow) ToDomain() *reservation.Payment {
	return &reservation.Payment{
		ID:            r.ID,
		ReservationID: r.ReservationID,
		TransactionID: r.TransactionID,
		Amount:        r.Amount,
		Method:        r.Method,
		Status:        reservation.PaymentStatus(r.Status),
		PaidAt:        pgconv.TimePtrFromPgtype(r.PaidAt),
	}
}

const PolicyColumns = `free_cancellation_hours, early_refund_rate, standard_refund_rate, late_refund_rate, no_refund_before_hours`

func PolicyDest(p *cancellation.Policy) []any {
	return []any{&p.FreeCancellationHours, &p.EarlyRefundRate, &p.StandardRefundRate, &p.LateRefundRate, &p.NoRefundBeforeHours}
}

const RefundColumns = `f.id, f.reservation_id, f.original_amount, f.refund_amount, f.fee_amount, f.applied_fee_rate,
	f.hours_before_start, f.refund_method, f.refund_reason, f.refund_status, f.retry_count, f.transaction_id,
	f.failure_reason, f.admin_note, f.processed_by, f.processed_at, f.created_at, f.updated_at`

type RefundRow struct {
	ID               uuid.UUID
	ReservationID    uuid.UUID
	OriginalAmount   int64
	RefundAmount     int64
	FeeAmount        int64
	AppliedFeeRate   float64
	HoursBeforeStart int
	RefundMethod     string
	RefundReason     string
	Status           string
	RetryCount       int
	TransactionID    pgtype.Text
	FailureReason    pgtype.Text
	AdminNote        pgtype.Text
	ProcessedBy      pgtype.Text
	ProcessedAt      pgtype.Timestamptz
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *RefundRow) Dest() []any {
	return []any{
		&r.ID, &r.ReservationID, &r.OriginalAmount, &r.RefundAmount, &r.FeeAmount, &r.AppliedFeeRate,
		&r.HoursBeforeStart, &r.RefundMethod, &r.RefundReason, &r.Status, &r.RetryCount, &r.TransactionID,
		&r.FailureReason, &r.AdminNote, &r.ProcessedBy, &r.ProcessedAt, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *RefundRow) Record() refund.Record {
	return refund.Record{
		ID:               r.ID,
		ReservationID:    r.ReservationID,
		OriginalAmount:   r.OriginalAmount,
		RefundAmount:     r.RefundAmount,
		FeeAmount:        r.FeeAmount,
		AppliedFeeRate:   r.AppliedFeeRate,
		HoursBeforeStart: r.HoursBeforeStart,
		RefundMethod:     r.RefundMethod,
		RefundReason:     r.RefundReason,
		Status:           refund.Status(r.Status),
		RetryCount:       r.RetryCount,
		TransactionID:    pgconv.StringPtrFromPgtype(r.TransactionID),
		FailureReason:    pgconv.StringPtrFromPgtype(r.FailureReason),
		AdminNote:        pgconv.StringPtrFromPgtype(r.AdminNote),
		ProcessedBy:      pgconv.StringPtrFromPgtype(r.ProcessedBy),
		ProcessedAt:      pgconv.TimePtrFromPgtype(r.ProcessedAt),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r *RefundRow) ToDomain() *refund.Refund {
	return refund.Reconstruct(r.Record())
}

// RefundArgs returns insert arguments in RefundColumns order.
func RefundArgs(f *refund.Refund) []any {
	rec := f.Record()
	return []any{
		rec.ID, rec.ReservationID, rec.OriginalAmount, rec.RefundAmount, rec.FeeAmount, rec.AppliedFeeRate,
		rec.HoursBeforeStart, rec.RefundMethod, rec.RefundReason, rec.Status.String(), rec.RetryCount,
		pgconv.StringPtrToPgtype(rec.TransactionID), pgconv.StringPtrToPgtype(rec.FailureReason),
		pgconv.StringPtrToPgtype(rec.AdminNote), pgconv.StringPtrToPgtype(rec.ProcessedBy),
		pgconv.TimePtrToPgtype(rec.ProcessedAt), rec.CreatedAt, rec.UpdatedAt,
	}
}

func StatusPtrToPgtype(s *refund.Status) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s.String(), Valid: true}
}

func StatusPtrFromPgtype(pt pgtype.Text) *refund.Status {
	if !pt.Valid {
		return nil
	}
	s := refund.Status(pt.String)
	return &s
}
