//go:build unit || e2e

package builder

import (
	"fmt"
	"time"

	"refund-settlement-engine/internal/domain/reservation"

	"github.com/google/uuid"
)

// ReservationBuilder produces a confirmed, paid reservation and its payment.
type ReservationBuilder struct {
	rec     reservation.Record
	payment reservation.Payment
}

func NewReservationBuilder(now time.Time) *ReservationBuilder {
	id := uuid.New()
	start := now.Add(30 * time.Hour)
	paidAt := now.Add(-24 * time.Hour)
	return &ReservationBuilder{
		rec: reservation.Record{
			ID:         id,
			CafeID:     uuid.New(),
			SeatID:     uuid.New(),
			UserID:     uuid.New(),
			StartTime:  start,
			EndTime:    start.Add(2 * time.Hour),
			TotalPrice: 10000,
			Status:     reservation.StatusConfirmed,
			CreatedAt:  paidAt,
			UpdatedAt:  paidAt,
		},
		payment: reservation.Payment{
			ID:            uuid.New(),
			ReservationID: id,
			TransactionID: fmt.Sprintf("PAY_%d", paidAt.UnixMilli()),
			Amount:        10000,
			Method:        "CARD",
			Status:        reservation.PaymentCompleted,
			PaidAt:        &paidAt,
		},
	}
}

func (b *ReservationBuilder) WithUserID(id uuid.UUID) *ReservationBuilder {
	b.rec.UserID = id
	return b
}

func (b *ReservationBuilder) WithCafeID(id uuid.UUID) *ReservationBuilder {
	b.rec.CafeID = id
	return b
}

// StartingAt moves the slot so it begins at start and lasts two hours.
func (b *ReservationBuilder) StartingAt(start time.Time) *ReservationBuilder {
	b.rec.StartTime = start
	b.rec.EndTime = start.Add(2 * time.Hour)
	return b
}

// WithAmount sets both the reservation price and the paid amount.
func (b *ReservationBuilder) WithAmount(amount int64) *ReservationBuilder {
	b.rec.TotalPrice = amount
	b.payment.Amount = amount
	return b
}

func (b *ReservationBuilder) WithStatus(s reservation.Status) *ReservationBuilder {
	b.rec.Status = s
	return b
}

func (b *ReservationBuilder) WithPaymentStatus(s reservation.PaymentStatus) *ReservationBuilder {
	b.payment.Status = s
	return b
}

func (b *ReservationBuilder) Build() (reservation.Record, reservation.Payment) {
	return b.rec, b.payment
}
