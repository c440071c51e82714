package shared

import (
	"context"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn in one transaction. It commits when fn returns nil and
	// rolls back on error or panic. Retryable database conflicts re-run fn.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx hands out repositories bound to the running transaction.
type Tx interface {
	Reservations() ReservationRepository
	Payments() PaymentRepository
	Policies() PolicyRepository
	Refunds() RefundRepository
	RefundLogs() RefundLogRepository
}

type ReservationRepository interface {
	// FindByIDForUpdate locks the row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	SaveCancellation(ctx context.Context, res *reservation.Reservation) error
}

type PaymentRepository interface {
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*reservation.Payment, error)
}

type PolicyRepository interface {
	FindByCafeID(ctx context.Context, cafeID uuid.UUID) (*cancellation.Policy, error)
	Upsert(ctx context.Context, cafeID uuid.UUID, policy cancellation.Policy) error
}

type RefundRepository interface {
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*refund.Refund, error)
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*refund.Refund, error)
	// Create fails with a duplicate-key error when the reservation already has a refund.
	Create(ctx context.Context, r *refund.Refund) error
	Update(ctx context.Context, r *refund.Refund) error
}

type RefundLogRepository interface {
	Append(ctx context.Context, entries ...refund.LogEntry) error
}
