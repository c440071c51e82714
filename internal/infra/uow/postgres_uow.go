package uow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/infra/repository"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/pkg/retry"
	"refund-settlement-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

type PostgresUoW struct {
	pool  *pgxpool.Pool
	retry retry.Policy
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{
		pool: pool,
		retry: retry.Policy{
			MaxAttempts: 4,
			BaseDelay:   100 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Retryable:   isRetryableError,
			OnRetry: func(attempt int, wait time.Duration, err error) {
				slog.Warn("retrying transaction due to retryable error",
					"attempt", attempt,
					"wait_ms", wait.Milliseconds(),
					"error", err.Error())
			},
		},
	}
}

// Within runs at ReadCommitted. Cancellation and settlement rely on row locks
// taken with SELECT ... FOR UPDATE, not on the isolation level.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	_, err := retry.Do(ctx, u.retry, func(ctx context.Context, _ int) (struct{}, error) {
		return struct{}{}, u.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
	})
	return err
}

// runOnce keeps the rollback out of a defer so retries do not pile up deferred calls.
func (u *PostgresUoW) runOnce(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) (err error) {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if p := recover(); p != nil {
			u.rollback(ctx, pgxTx)
			panic(p)
		}
	}()

	err = fn(ctx, &pgTx{dbtx: pgxTx})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}
	u.rollback(ctx, pgxTx)
	return err
}

func (u *PostgresUoW) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", "error", err.Error())
	}
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	reservationRepo shared.ReservationRepository
	paymentRepo     shared.PaymentRepository
	policyRepo      shared.PolicyRepository
	refundRepo      shared.RefundRepository
	refundLogRepo   shared.RefundLogRepository
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Payments() shared.PaymentRepository {
	if t.paymentRepo == nil {
		t.paymentRepo = repository.NewPaymentRepository(t.dbtx)
	}
	return t.paymentRepo
}

func (t *pgTx) Policies() shared.PolicyRepository {
	if t.policyRepo == nil {
		t.policyRepo = repository.NewPolicyRepository(t.dbtx)
	}
	return t.policyRepo
}

func (t *pgTx) Refunds() shared.RefundRepository {
	if t.refundRepo == nil {
		t.refundRepo = repository.NewRefundRepository(t.dbtx)
	}
	return t.refundRepo
}

func (t *pgTx) RefundLogs() shared.RefundLogRepository {
	if t.refundLogRepo == nil {
		t.refundLogRepo = repository.NewRefundLogRepository(t.dbtx)
	}
	return t.refundLogRepo
}
