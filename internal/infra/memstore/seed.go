package memstore

import (
	"fmt"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/reservation"

	"github.com/google/uuid"
)

// DemoUserID owns every seeded reservation.
var DemoUserID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

type demoCafe struct {
	id     uuid.UUID
	policy cancellation.Policy
}

var demoCafes = []demoCafe{
	{uuid.MustParse("00000000-0000-4000-8000-0000000000c1"), cancellation.Policy{FreeCancellationHours: 24, EarlyRefundRate: 100, StandardRefundRate: 80, LateRefundRate: 50, NoRefundBeforeHours: 2}},
	{uuid.MustParse("00000000-0000-4000-8000-0000000000c2"), cancellation.Policy{FreeCancellationHours: 48, EarlyRefundRate: 100, StandardRefundRate: 90, LateRefundRate: 70, NoRefundBeforeHours: 1}},
	{uuid.MustParse("00000000-0000-4000-8000-0000000000c3"), cancellation.Policy{FreeCancellationHours: 12, EarlyRefundRate: 100, StandardRefundRate: 70, LateRefundRate: 40, NoRefundBeforeHours: 3}},
}

// SeedDemo loads three cafes with their policies and one paid reservation
// per cafe, starting 30, 10 and 1 hours after now. It returns the
// reservation ids in that order.
func (s *Store) SeedDemo(now time.Time) []uuid.UUID {
	offsets := []time.Duration{30 * time.Hour, 10 * time.Hour, time.Hour}
	prices := []int64{12000, 18000, 8000}

	ids := make([]uuid.UUID, 0, len(demoCafes))
	for i, cafe := range demoCafes {
		s.SetPolicy(cafe.id, cafe.policy)

		id := uuid.New()
		start := now.Add(offsets[i]).Truncate(time.Minute)
		paidAt := now.Add(-24 * time.Hour)
		s.AddReservation(reservation.Record{
			ID:         id,
			CafeID:     cafe.id,
			SeatID:     uuid.New(),
			UserID:     DemoUserID,
			StartTime:  start,
			EndTime:    start.Add(2 * time.Hour),
			TotalPrice: prices[i],
			Status:     reservation.StatusConfirmed,
			CreatedAt:  paidAt,
			UpdatedAt:  paidAt,
		})
		s.AddPayment(reservation.Payment{
			ID:            uuid.New(),
			ReservationID: id,
			TransactionID: fmt.Sprintf("PAY_%d_%d", paidAt.UnixMilli(), i+1),
			Amount:        prices[i],
			Method:        "CARD",
			Status:        reservation.PaymentCompleted,
			PaidAt:        &paidAt,
		})
		ids = append(ids, id)
	}
	return ids
}
