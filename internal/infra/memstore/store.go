// Package memstore keeps reservations, policies and refunds in process memory.
// It implements the same ports as the Postgres stores and is used by the
// memory driver and by tests.
package memstore

import (
	"context"
	"maps"
	"sync"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type state struct {
	reservations map[uuid.UUID]reservation.Record
	payments     map[uuid.UUID]reservation.Payment // keyed by reservation id
	policies     map[uuid.UUID]cancellation.Policy
	refunds      map[uuid.UUID]refund.Record
	logs         []refund.LogEntry
}

func (s *state) clone() *state {
	return &state{
		reservations: maps.Clone(s.reservations),
		payments:     maps.Clone(s.payments),
		policies:     maps.Clone(s.policies),
		refunds:      maps.Clone(s.refunds),
		logs:         s.logs[:len(s.logs):len(s.logs)],
	}
}

// Store serializes transactions with one mutex, which stands in for the
// row locks the Postgres implementation takes. A committed state is never
// mutated again, so readers use snapshots without holding the lock.
type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: &state{
		reservations: make(map[uuid.UUID]reservation.Record),
		payments:     make(map[uuid.UUID]reservation.Payment),
		policies:     make(map[uuid.UUID]cancellation.Policy),
		refunds:      make(map[uuid.UUID]refund.Record),
	}}
}

func (s *Store) AddReservation(rec reservation.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	st.reservations[rec.ID] = rec
	s.state = st
}

func (s *Store) AddPayment(p reservation.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	st.payments[p.ReservationID] = p
	s.state = st
}

func (s *Store) SetPolicy(cafeID uuid.UUID, p cancellation.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	st.policies[cafeID] = p
	s.state = st
}

// Within applies fn to a private copy and swaps it in only on success.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	staged := s.state.clone()
	if err := fn(ctx, &memTx{st: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (s *Store) read() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

var _ shared.UnitOfWork = (*Store)(nil)

type memTx struct {
	st *state
}

func (t *memTx) Reservations() shared.ReservationRepository { return reservationRepo{t.st} }
func (t *memTx) Payments() shared.PaymentRepository         { return paymentRepo{t.st} }
func (t *memTx) Policies() shared.PolicyRepository          { return policyRepo{t.st} }
func (t *memTx) Refunds() shared.RefundRepository           { return refundRepo{t.st} }
func (t *memTx) RefundLogs() shared.RefundLogRepository     { return logRepo{t.st} }

func notFound(msg string) error {
	return infra.WrapRepoErr(infra.KindNotFound, msg, nil)
}

type reservationRepo struct{ st *state }

func (r reservationRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	rec, ok := r.st.reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	return reservation.Reconstruct(rec), nil
}

func (r reservationRepo) SaveCancellation(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.st.reservations[res.ID()]; !ok {
		return notFound("reservation not found")
	}
	r.st.reservations[res.ID()] = res.Record()
	return nil
}

type paymentRepo struct{ st *state }

func (r paymentRepo) FindByReservationID(_ context.Context, reservationID uuid.UUID) (*reservation.Payment, error) {
	return findPayment(r.st, reservationID)
}

func findPayment(st *state, reservationID uuid.UUID) (*reservation.Payment, error) {
	p, ok := st.payments[reservationID]
	if !ok {
		return nil, notFound("payment not found")
	}
	return &p, nil
}

type policyRepo struct{ st *state }

func (r policyRepo) FindByCafeID(_ context.Context, cafeID uuid.UUID) (*cancellation.Policy, error) {
	return findPolicy(r.st, cafeID)
}

func (r policyRepo) Upsert(_ context.Context, cafeID uuid.UUID, p cancellation.Policy) error {
	r.st.policies[cafeID] = p
	return nil
}

func findPolicy(st *state, cafeID uuid.UUID) (*cancellation.Policy, error) {
	p, ok := st.policies[cafeID]
	if !ok {
		return nil, notFound("cancellation policy not found")
	}
	return &p, nil
}

type refundRepo struct{ st *state }

func (r refundRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*refund.Refund, error) {
	rec, ok := r.st.refunds[id]
	if !ok {
		return nil, notFound("refund not found")
	}
	return refund.Reconstruct(rec), nil
}

func (r refundRepo) FindByReservationID(_ context.Context, reservationID uuid.UUID) (*refund.Refund, error) {
	rec, ok := refundForReservation(r.st, reservationID)
	if !ok {
		return nil, notFound("refund not found")
	}
	return refund.Reconstruct(rec), nil
}

func (r refundRepo) Create(_ context.Context, f *refund.Refund) error {
	if _, ok := refundForReservation(r.st, f.ReservationID()); ok {
		return infra.WrapRepoErr(infra.KindDuplicateKey, "refund already exists for reservation", nil)
	}
	if _, ok := r.st.reservations[f.ReservationID()]; !ok {
		return infra.WrapRepoErr(infra.KindForeignKeyViolated, "reservation does not exist", nil)
	}
	r.st.refunds[f.ID()] = f.Record()
	return nil
}

func (r refundRepo) Update(_ context.Context, f *refund.Refund) error {
	if _, ok := r.st.refunds[f.ID()]; !ok {
		return notFound("refund not found")
	}
	r.st.refunds[f.ID()] = f.Record()
	return nil
}

func refundForReservation(st *state, reservationID uuid.UUID) (refund.Record, bool) {
	for _, rec := range st.refunds {
		if rec.ReservationID == reservationID {
			return rec, true
		}
	}
	return refund.Record{}, false
}

type logRepo struct{ st *state }

func (r logRepo) Append(_ context.Context, entries ...refund.LogEntry) error {
	for _, e := range entries {
		if _, ok := r.st.refunds[e.RefundID]; !ok {
			return infra.WrapRepoErr(infra.KindForeignKeyViolated, "refund does not exist", nil)
		}
	}
	r.st.logs = append(r.st.logs, entries...)
	return nil
}
