package queries

import (
	"context"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/infra"

	"github.com/google/uuid"
)

type RefundReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RefundView, error)
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*RefundView, error)
	// ListLogs returns entries oldest first.
	ListLogs(ctx context.Context, refundID uuid.UUID) ([]*RefundLogView, error)
	ListFirstPage(ctx context.Context, filter RefundFilter, limit int32) ([]*RefundListItem, error)
	ListKeyset(ctx context.Context, filter RefundFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*RefundListItem, error)
	AggregateByStatus(ctx context.Context, filter StatisticsFilter) ([]StatusAggregate, error)
}

type RefundQueries interface {
	GetRefund(ctx context.Context, refundID uuid.UUID, actor user.Actor) (*RefundDetailsView, error)
	ListRefunds(ctx context.Context, filter RefundFilter, cursor *Cursor, limit int, actor user.Actor) ([]*RefundListItem, *Cursor, error)
	GetRefundStatistics(ctx context.Context, filter StatisticsFilter, actor user.Actor) (*RefundStatistics, error)
}

type refundQueriesImpl struct {
	store RefundReadStore
}

func NewRefundQueries(store RefundReadStore) RefundQueries {
	return &refundQueriesImpl{store: store}
}

func (q *refundQueriesImpl) GetRefund(ctx context.Context, refundID uuid.UUID, actor user.Actor) (*RefundDetailsView, error) {
	rv, err := q.store.FindByID(ctx, refundID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, refund.ErrRefundNotFound
		}
		return nil, err
	}
	if !actor.CanActFor(rv.UserID) {
		return nil, ErrAccessDenied
	}

	logs, err := q.store.ListLogs(ctx, refundID)
	if err != nil {
		return nil, err
	}
	return &RefundDetailsView{RefundView: *rv, Logs: logs}, nil
}

func (q *refundQueriesImpl) ListRefunds(ctx context.Context, filter RefundFilter, cursor *Cursor, limit int, actor user.Actor) ([]*RefundListItem, *Cursor, error) {
	if !actor.IsAdmin() {
		return nil, nil, ErrAccessDenied
	}

	limit = ValidateLimit(limit)
	var rows []*RefundListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.ListFirstPage(ctx, filter, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, derr
		}
		rows, err = q.store.ListKeyset(ctx, filter, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *refundQueriesImpl) GetRefundStatistics(ctx context.Context, filter StatisticsFilter, actor user.Actor) (*RefundStatistics, error) {
	if !actor.IsStaff() {
		return nil, ErrAccessDenied
	}
	rows, err := q.store.AggregateByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	return BuildStatistics(rows), nil
}

// BuildStatistics folds per-status aggregates into totals. Every status is
// present in StatusCounts and averages are zero when there are no refunds.
func BuildStatistics(rows []StatusAggregate) *RefundStatistics {
	stats := &RefundStatistics{StatusCounts: make(map[refund.Status]int64, len(refund.Statuses))}
	for _, s := range refund.Statuses {
		stats.StatusCounts[s] = 0
	}
	for _, r := range rows {
		stats.StatusCounts[r.Status] += r.Count
		stats.TotalRefunds += r.Count
		stats.Amounts.TotalOriginal += r.TotalOriginal
		stats.Amounts.TotalRefund += r.TotalRefund
		stats.Amounts.TotalFee += r.TotalFee
	}
	if stats.TotalRefunds > 0 {
		n := float64(stats.TotalRefunds)
		stats.Amounts.AverageRefund = float64(stats.Amounts.TotalRefund) / n
		stats.Amounts.AverageFee = float64(stats.Amounts.TotalFee) / n
	}
	return stats
}
