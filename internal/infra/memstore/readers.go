package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationReader struct{ s *Store }

func (s *Store) ReservationReader() *ReservationReader { return &ReservationReader{s} }

func (r *ReservationReader) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	rec, ok := r.s.read().reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	return reservation.Reconstruct(rec), nil
}

func (r *ReservationReader) FindPayment(_ context.Context, reservationID uuid.UUID) (*reservation.Payment, error) {
	return findPayment(r.s.read(), reservationID)
}

type PolicyReader struct{ s *Store }

func (s *Store) PolicyReader() *PolicyReader { return &PolicyReader{s} }

func (r *PolicyReader) FindByCafeID(_ context.Context, cafeID uuid.UUID) (*cancellation.Policy, error) {
	return findPolicy(r.s.read(), cafeID)
}

type RefundReader struct{ s *Store }

func (s *Store) RefundReader() *RefundReader { return &RefundReader{s} }

func (r *RefundReader) FindByID(_ context.Context, id uuid.UUID) (*queries.RefundView, error) {
	st := r.s.read()
	rec, ok := st.refunds[id]
	if !ok {
		return nil, notFound("refund not found")
	}
	return view(st, rec), nil
}

func (r *RefundReader) FindByReservationID(_ context.Context, reservationID uuid.UUID) (*queries.RefundView, error) {
	st := r.s.read()
	rec, ok := refundForReservation(st, reservationID)
	if !ok {
		return nil, notFound("refund not found")
	}
	return view(st, rec), nil
}

func (r *RefundReader) ListLogs(_ context.Context, refundID uuid.UUID) ([]*queries.RefundLogView, error) {
	var out []*queries.RefundLogView
	for _, e := range r.s.read().logs {
		if e.RefundID != refundID {
			continue
		}
		out = append(out, &queries.RefundLogView{
			PreviousStatus: e.PreviousStatus,
			NewStatus:      e.NewStatus,
			Reason:         e.Reason,
			Actor:          e.Actor,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out, nil
}

func (r *RefundReader) ListFirstPage(ctx context.Context, filter queries.RefundFilter, limit int32) ([]*queries.RefundListItem, error) {
	return r.list(filter, nil, uuid.Nil, limit), nil
}

func (r *RefundReader) ListKeyset(_ context.Context, filter queries.RefundFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.RefundListItem, error) {
	return r.list(filter, &lastCreatedAt, lastID, limit), nil
}

// list orders newest first with id as the tie-breaker, like the SQL keyset query.
func (r *RefundReader) list(filter queries.RefundFilter, afterAt *time.Time, afterID uuid.UUID, limit int32) []*queries.RefundListItem {
	st := r.s.read()
	var items []*queries.RefundListItem
	for _, rec := range st.refunds {
		cafeID := st.reservations[rec.ReservationID].CafeID
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.CafeID != nil && cafeID != *filter.CafeID {
			continue
		}
		if afterAt != nil && !before(rec.CreatedAt, rec.ID, *afterAt, afterID) {
			continue
		}
		items = append(items, &queries.RefundListItem{
			ID:            rec.ID,
			ReservationID: rec.ReservationID,
			CafeID:        cafeID,
			RefundAmount:  rec.RefundAmount,
			FeeAmount:     rec.FeeAmount,
			Status:        rec.Status,
			RetryCount:    rec.RetryCount,
			CreatedAt:     rec.CreatedAt,
		})
	}
	slices.SortFunc(items, func(a, b *queries.RefundListItem) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
	if len(items) > int(limit) {
		items = items[:limit]
	}
	return items
}

func before(at time.Time, id uuid.UUID, refAt time.Time, refID uuid.UUID) bool {
	at, refAt = at.Truncate(time.Microsecond), refAt.Truncate(time.Microsecond)
	if !at.Equal(refAt) {
		return at.Before(refAt)
	}
	return id.String() < refID.String()
}

func (r *RefundReader) AggregateByStatus(_ context.Context, filter queries.StatisticsFilter) ([]queries.StatusAggregate, error) {
	st := r.s.read()
	byStatus := make(map[refund.Status]*queries.StatusAggregate)
	for _, rec := range st.refunds {
		if filter.CafeID != nil && st.reservations[rec.ReservationID].CafeID != *filter.CafeID {
			continue
		}
		if filter.From != nil && rec.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.CreatedAt.After(*filter.To) {
			continue
		}
		agg, ok := byStatus[rec.Status]
		if !ok {
			agg = &queries.StatusAggregate{Status: rec.Status}
			byStatus[rec.Status] = agg
		}
		agg.Count++
		agg.TotalOriginal += rec.OriginalAmount
		agg.TotalRefund += rec.RefundAmount
		agg.TotalFee += rec.FeeAmount
	}
	out := make([]queries.StatusAggregate, 0, len(byStatus))
	for _, s := range refund.Statuses {
		if agg, ok := byStatus[s]; ok {
			out = append(out, *agg)
		}
	}
	return out, nil
}

func view(st *state, rec refund.Record) *queries.RefundView {
	res := st.reservations[rec.ReservationID]
	return queries.NewRefundView(rec, res.UserID, res.CafeID)
}

// Refund returns the current refund record, for tests and the demo CLI.
func (s *Store) Refund(id uuid.UUID) (refund.Record, bool) {
	rec, ok := s.read().refunds[id]
	return rec, ok
}

// Reservation returns the current reservation record.
func (s *Store) Reservation(id uuid.UUID) (reservation.Record, bool) {
	rec, ok := s.read().reservations[id]
	return rec, ok
}

// Logs returns the audit entries of one refund in append order.
func (s *Store) Logs(refundID uuid.UUID) []refund.LogEntry {
	var out []refund.LogEntry
	for _, e := range s.read().logs {
		if e.RefundID == refundID {
			out = append(out, e)
		}
	}
	return out
}

// RefundCount counts refunds across all reservations.
func (s *Store) RefundCount() int {
	return len(s.read().refunds)
}
