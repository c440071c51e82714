//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservation(status reservation.Status) *reservation.Reservation {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return reservation.Reconstruct(reservation.Record{
		ID:         uuid.New(),
		CafeID:     uuid.New(),
		SeatID:     uuid.New(),
		UserID:     uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		TotalPrice: 10000,
		Status:     status,
	})
}

func TestReservationCancel(t *testing.T) {
	at := time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC)

	t.Run("confirmed reservation is cancelled with metadata", func(t *testing.T) {
		res := newReservation(reservation.StatusConfirmed)
		note := "schedule changed"

		require.NoError(t, res.Cancel("USER_REQUEST", &note, at))

		assert.True(t, res.IsCancelled())
		require.NotNil(t, res.CancellationReason())
		assert.Equal(t, "USER_REQUEST", *res.CancellationReason())
		assert.Equal(t, &note, res.CancellationNote())
		require.NotNil(t, res.CancelledAt())
		assert.Equal(t, at, *res.CancelledAt())
	})

	t.Run("pending reservation can be cancelled", func(t *testing.T) {
		res := newReservation(reservation.StatusPending)
		assert.NoError(t, res.Cancel("EMERGENCY", nil, at))
	})

	t.Run("terminal statuses are rejected", func(t *testing.T) {
		cases := []struct {
			status reservation.Status
			errIs  error
		}{
			{status: reservation.StatusCancelled, errIs: reservation.ErrAlreadyCancelled},
			{status: reservation.StatusCompleted, errIs: reservation.ErrAlreadyCompleted},
		}
		for _, c := range cases {
			t.Run(c.status.String(), func(t *testing.T) {
				res := newReservation(c.status)
				err := res.Cancel("USER_REQUEST", nil, at)
				assert.True(t, errs.Is(err, c.errIs))
				assert.True(t, errs.Is(err, errs.ErrInvalidState))
				assert.Equal(t, c.status, res.Status())
			})
		}
	})
}

func TestTimeSlot(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := reservation.NewTimeSlot(start, start)
	assert.ErrorIs(t, err, reservation.ErrInvalidTimeSlot)

	slot, err := reservation.NewTimeSlot(start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, slot.Duration())
	assert.False(t, slot.HasStarted(start.Add(-time.Second)))
	assert.True(t, slot.HasStarted(start))
}
