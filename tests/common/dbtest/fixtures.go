//go:build unit || e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by *pgxpool.Pool and pgx.Tx.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InsertReservation stores a reservation together with its payment, the way
// the booking service would have left them.
func InsertReservation(t *testing.T, db DBLike, rec reservation.Record, pay reservation.Payment) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO reservations (id, cafe_id, seat_id, user_id, start_time, end_time, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.CafeID, rec.SeatID, rec.UserID, rec.StartTime, rec.EndTime, rec.TotalPrice, string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO payments (id, reservation_id, transaction_id, amount, payment_method, payment_status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pay.ID, pay.ReservationID, pay.TransactionID, pay.Amount, pay.Method, string(pay.Status), pay.PaidAt)
	require.NoError(t, err)
}

func InsertPolicy(t *testing.T, db DBLike, cafeID uuid.UUID, p cancellation.Policy) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO cancellation_policies (cafe_id, free_cancellation_hours, early_refund_rate, standard_refund_rate, late_refund_rate, no_refund_before_hours)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		cafeID, p.FreeCancellationHours, p.EarlyRefundRate, p.StandardRefundRate, p.LateRefundRate, p.NoRefundBeforeHours)
	require.NoError(t, err)
}

func ReservationStatus(t *testing.T, db DBLike, id uuid.UUID) string {
	t.Helper()
	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM reservations WHERE id = $1", id).Scan(&status)
	require.NoError(t, err)
	return status
}

func CountRefunds(t *testing.T, db DBLike, reservationID uuid.UUID) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM refunds WHERE reservation_id = $1", reservationID).Scan(&n)
	require.NoError(t, err)
	return n
}

func CountRefundLogs(t *testing.T, db DBLike, refundID uuid.UUID) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM refund_logs WHERE refund_id = $1", refundID).Scan(&n)
	require.NoError(t, err)
	return n
}

// ResetDB empties every engine table between subtests.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := pool.Exec(ctx, `TRUNCATE refund_logs, refunds, cancellation_policies, payments, reservations RESTART IDENTITY CASCADE`)
	return err
}
