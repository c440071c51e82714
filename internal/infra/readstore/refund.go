package readstore

import (
	"context"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/infra/repository/converter"
	"refund-settlement-engine/internal/pkg/pgconv"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	refundViewFrom = `SELECT ` + converter.RefundColumns + `, r.user_id, r.cafe_id
		FROM refunds f JOIN reservations r ON r.id = f.reservation_id`

	selectRefundViewByID          = refundViewFrom + ` WHERE f.id = $1`
	selectRefundViewByReservation = refundViewFrom + ` WHERE f.reservation_id = $1`

	selectRefundLogs = `SELECT previous_status, new_status, reason, actor, created_at
		FROM refund_logs WHERE refund_id = $1 ORDER BY id`

	refundListFrom = `SELECT f.id, f.reservation_id, r.cafe_id, f.refund_amount, f.fee_amount,
			f.refund_status, f.retry_count, f.created_at
		FROM refunds f JOIN reservations r ON r.id = f.reservation_id
		WHERE ($1::text IS NULL OR f.refund_status = $1)
		  AND ($2::uuid IS NULL OR r.cafe_id = $2)`

	selectRefundsFirstPage = refundListFrom + `
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $3`

	selectRefundsKeyset = refundListFrom + `
		  AND (f.created_at, f.id) < ($4, $5)
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $3`

	selectRefundAggregates = `SELECT f.refund_status, COUNT(*),
			COALESCE(SUM(f.original_amount), 0)::bigint,
			COALESCE(SUM(f.refund_amount), 0)::bigint,
			COALESCE(SUM(f.fee_amount), 0)::bigint
		FROM refunds f JOIN reservations r ON r.id = f.reservation_id
		WHERE ($1::uuid IS NULL OR r.cafe_id = $1)
		  AND ($2::timestamptz IS NULL OR f.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR f.created_at <= $3)
		GROUP BY f.refund_status`
)

type RefundReadStore struct {
	db db.DBTX
}

func NewRefundReadStore(dbtx db.DBTX) *RefundReadStore {
	return &RefundReadStore{db: dbtx}
}

func (s *RefundReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RefundView, error) {
	return s.findView(ctx, selectRefundViewByID, id)
}

func (s *RefundReadStore) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*queries.RefundView, error) {
	return s.findView(ctx, selectRefundViewByReservation, reservationID)
}

func (s *RefundReadStore) findView(ctx context.Context, query string, arg uuid.UUID) (*queries.RefundView, error) {
	var (
		row            converter.RefundRow
		userID, cafeID uuid.UUID
	)
	dest := append(row.Dest(), &userID, &cafeID)
	if err := s.db.QueryRow(ctx, query, arg).Scan(dest...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "refund not found", err)
		}
		return nil, infra.ClassifyPgErr("failed to get refund view", err)
	}
	return queries.NewRefundView(row.Record(), userID, cafeID), nil
}

func (s *RefundReadStore) ListLogs(ctx context.Context, refundID uuid.UUID) ([]*queries.RefundLogView, error) {
	rows, err := s.db.Query(ctx, selectRefundLogs, refundID)
	if err != nil {
		return nil, infra.ClassifyPgErr("failed to list refund logs", err)
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.RefundLogView, error) {
		var (
			prev pgtype.Text
			v    queries.RefundLogView
			next string
		)
		if err := row.Scan(&prev, &next, &v.Reason, &v.Actor, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.PreviousStatus = converter.StatusPtrFromPgtype(prev)
		v.NewStatus = refund.Status(next)
		return &v, nil
	})
	if err != nil {
		return nil, infra.ClassifyPgErr("failed to scan refund logs", err)
	}
	return logs, nil
}

func (s *RefundReadStore) ListFirstPage(ctx context.Context, filter queries.RefundFilter, limit int32) ([]*queries.RefundListItem, error) {
	return s.list(ctx, selectRefundsFirstPage, statusArg(filter.Status), pgconv.UUIDPtrToPgtype(filter.CafeID), limit)
}

func (s *RefundReadStore) ListKeyset(ctx context.Context, filter queries.RefundFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.RefundListItem, error) {
	return s.list(ctx, selectRefundsKeyset,
		statusArg(filter.Status), pgconv.UUIDPtrToPgtype(filter.CafeID), limit, lastCreatedAt, lastID)
}

func (s *RefundReadStore) list(ctx context.Context, query string, args ...any) ([]*queries.RefundListItem, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.ClassifyPgErr("failed to list refunds", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.RefundListItem, error) {
		var (
			it     queries.RefundListItem
			status string
		)
		if err := row.Scan(&it.ID, &it.ReservationID, &it.CafeID, &it.RefundAmount, &it.FeeAmount,
			&status, &it.RetryCount, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Status = refund.Status(status)
		return &it, nil
	})
	if err != nil {
		return nil, infra.ClassifyPgErr("failed to scan refunds", err)
	}
	return items, nil
}

func (s *RefundReadStore) AggregateByStatus(ctx context.Context, filter queries.StatisticsFilter) ([]queries.StatusAggregate, error) {
	rows, err := s.db.Query(ctx, selectRefundAggregates,
		pgconv.UUIDPtrToPgtype(filter.CafeID),
		pgconv.TimePtrToPgtype(filter.From),
		pgconv.TimePtrToPgtype(filter.To),
	)
	if err != nil {
		return nil, infra.ClassifyPgErr("failed to aggregate refunds", err)
	}
	aggs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.StatusAggregate, error) {
		var (
			a      queries.StatusAggregate
			status string
		)
		err := row.Scan(&status, &a.Count, &a.TotalOriginal, &a.TotalRefund, &a.TotalFee)
		a.Status = refund.Status(status)
		return a, err
	})
	if err != nil {
		return nil, infra.ClassifyPgErr("failed to scan refund aggregates", err)
	}
	return aggs, nil
}

func statusArg(s *refund.Status) pgtype.Text {
	return converter.StatusPtrToPgtype(s)
}
