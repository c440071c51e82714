//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/infra/memstore"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/queries"
	"refund-settlement-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCancellationQueries(store *memstore.Store) queries.CancellationQueries {
	return queries.NewCancellationQueries(store.ReservationReader(), store.PolicyReader(), store.RefundReader(), clock.NewMockClock(now))
}

func addReservation(store *memstore.Store, userID uuid.UUID, hoursAhead int) reservation.Record {
	rec, pay := builder.NewReservationBuilder(now).
		WithUserID(userID).
		StartingAt(now.Add(time.Duration(hoursAhead) * time.Hour)).
		Build()
	store.AddReservation(rec)
	store.AddPayment(pay)
	return rec
}

func TestCancellationQueries_CalculateFee(t *testing.T) {
	customer := user.NewActor(uuid.New(), user.RoleUser)

	cases := []struct {
		name       string
		hoursAhead int
		wantTier   cancellation.Tier
		wantRefund int64
		wantFee    int64
		canCancel  bool
	}{
		{"early window", 30, cancellation.TierEarly, 10000, 0, true},
		{"exactly at free window", 24, cancellation.TierEarly, 10000, 0, true},
		{"standard window", 10, cancellation.TierStandard, 5000, 5000, true},
		{"exactly at cutoff", 2, cancellation.TierStandard, 5000, 5000, true},
		{"inside cutoff", 1, cancellation.TierClosed, 0, 10000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memstore.New()
			rec := addReservation(store, customer.ID, tc.hoursAhead)

			got, err := newCancellationQueries(store).CalculateFee(context.Background(), rec.ID, customer)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTier, got.Tier)
			assert.Equal(t, tc.wantRefund, got.RefundAmount)
			assert.Equal(t, tc.wantFee, got.FeeAmount)
			assert.Equal(t, tc.canCancel, got.CanCancel)
			assert.Equal(t, got.OriginalAmount, got.RefundAmount+got.FeeAmount)
			assert.Equal(t, tc.hoursAhead, got.HoursBeforeStart)
		})
	}

	t.Run("stored policy wins over the default", func(t *testing.T) {
		store := memstore.New()
		rec := addReservation(store, customer.ID, 30)
		store.SetPolicy(rec.CafeID, cancellation.Policy{
			FreeCancellationHours: 48, EarlyRefundRate: 100, StandardRefundRate: 80, LateRefundRate: 0, NoRefundBeforeHours: 6,
		})

		got, err := newCancellationQueries(store).CalculateFee(context.Background(), rec.ID, customer)
		require.NoError(t, err)
		assert.Equal(t, cancellation.TierStandard, got.Tier)
		assert.Equal(t, int64(8000), got.RefundAmount)
		assert.InDelta(t, 80.0, got.RefundRatePercent, 0.001)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		store := memstore.New()
		rec := addReservation(store, customer.ID, 30)
		_, err := newCancellationQueries(store).CalculateFee(context.Background(), rec.ID, user.NewActor(uuid.New(), user.RoleUser))
		assert.True(t, errs.Is(err, queries.ErrAccessDenied))
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := newCancellationQueries(memstore.New()).CalculateFee(context.Background(), uuid.New(), customer)
		assert.True(t, errs.Is(err, reservation.ErrReservationNotFound))
	})
}

func TestCancellationQueries_CanCancel(t *testing.T) {
	customer := user.NewActor(uuid.New(), user.RoleUser)

	t.Run("allowed", func(t *testing.T) {
		store := memstore.New()
		rec := addReservation(store, customer.ID, 30)

		got, err := newCancellationQueries(store).CanCancel(context.Background(), rec.ID, customer)
		require.NoError(t, err)
		assert.True(t, got.CanCancel)
		assert.Nil(t, got.Reason)
		require.NotNil(t, got.Calculation)
	})

	t.Run("already started", func(t *testing.T) {
		store := memstore.New()
		rec := addReservation(store, customer.ID, -1)

		got, err := newCancellationQueries(store).CanCancel(context.Background(), rec.ID, customer)
		require.NoError(t, err)
		assert.False(t, got.CanCancel)
		require.NotNil(t, got.Reason)
		assert.Equal(t, cancellation.ReasonAlreadyStarted, *got.Reason)
	})

	t.Run("already cancelled is reported, not returned", func(t *testing.T) {
		store := memstore.New()
		rec, pay := builder.NewReservationBuilder(now).WithUserID(customer.ID).WithStatus(reservation.StatusCancelled).Build()
		store.AddReservation(rec)
		store.AddPayment(pay)

		got, err := newCancellationQueries(store).CanCancel(context.Background(), rec.ID, customer)
		require.NoError(t, err)
		assert.False(t, got.CanCancel)
		assert.Nil(t, got.Calculation)
		require.NotNil(t, got.Reason)
		assert.Contains(t, *got.Reason, "already cancelled")
	})

	t.Run("unpaid reservation", func(t *testing.T) {
		store := memstore.New()
		rec, pay := builder.NewReservationBuilder(now).WithUserID(customer.ID).WithPaymentStatus(reservation.PaymentPending).Build()
		store.AddReservation(rec)
		store.AddPayment(pay)

		got, err := newCancellationQueries(store).CanCancel(context.Background(), rec.ID, customer)
		require.NoError(t, err)
		assert.False(t, got.CanCancel)
	})
}

func TestCancellationQueries_GetCancellationDetails(t *testing.T) {
	customer := user.NewActor(uuid.New(), user.RoleUser)

	t.Run("open reservation with default policy", func(t *testing.T) {
		store := memstore.New()
		rec := addReservation(store, customer.ID, 10)

		got, err := newCancellationQueries(store).GetCancellationDetails(context.Background(), rec.ID, customer)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.Reservation.ID)
		assert.True(t, got.Policy.IsDefault)
		assert.True(t, got.CanCancel)
		require.NotNil(t, got.Quote)
		assert.Equal(t, int64(5000), got.Quote.FeeAmount)
		assert.Nil(t, got.Refund)
	})

	t.Run("existing refund blocks another cancellation", func(t *testing.T) {
		store := memstore.New()
		cafe := uuid.New()
		refundID := seedRefund(t, store, cafe, customer.ID, now, 30, false)
		rv, err := store.RefundReader().FindByID(context.Background(), refundID)
		require.NoError(t, err)

		got, err := newCancellationQueries(store).GetCancellationDetails(context.Background(), rv.ReservationID, customer)
		require.NoError(t, err)
		assert.False(t, got.CanCancel)
		require.NotNil(t, got.Refund)
		assert.Equal(t, refundID, got.Refund.ID)
		assert.Equal(t, "CANCELLED", got.Reservation.Status)
		require.NotNil(t, got.Reason)
	})
}

func TestPolicyQueries_GetPolicy(t *testing.T) {
	store := memstore.New()
	q := queries.NewPolicyQueries(store.PolicyReader())

	t.Run("falls back to default", func(t *testing.T) {
		cafeID := uuid.New()
		got, err := q.GetPolicy(context.Background(), cafeID)
		require.NoError(t, err)
		assert.True(t, got.IsDefault)
		assert.Equal(t, cafeID, got.CafeID)
		assert.Equal(t, 24, got.FreeCancellationHours)
		assert.Equal(t, 2, got.NoRefundBeforeHours)
	})

	t.Run("stored policy", func(t *testing.T) {
		cafeID := uuid.New()
		store.SetPolicy(cafeID, cancellation.Policy{FreeCancellationHours: 12, EarlyRefundRate: 90, StandardRefundRate: 60, NoRefundBeforeHours: 1})
		got, err := q.GetPolicy(context.Background(), cafeID)
		require.NoError(t, err)
		assert.False(t, got.IsDefault)
		assert.Equal(t, 12, got.FreeCancellationHours)
		assert.NotEmpty(t, got.Description)
	})
}
