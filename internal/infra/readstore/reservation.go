package readstore

import (
	"context"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/infra/repository"
	"refund-settlement-engine/internal/infra/repository/converter"
	"refund-settlement-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const selectReservationByID = `SELECT ` + converter.ReservationColumns + `
	FROM reservations r WHERE r.id = $1`

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

func (s *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var row converter.ReservationRow
	if err := s.db.QueryRow(ctx, selectReservationByID, id).Scan(row.Dest()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "reservation not found", err)
		}
		return nil, infra.ClassifyPgErr("failed to get reservation", err)
	}
	return row.ToDomain(), nil
}

func (s *ReservationReadStore) FindPayment(ctx context.Context, reservationID uuid.UUID) (*reservation.Payment, error) {
	return repository.FindPayment(ctx, s.db, reservationID)
}

type PolicyReadStore struct {
	repo *repository.PolicyRepository
}

func NewPolicyReadStore(dbtx db.DBTX) *PolicyReadStore {
	return &PolicyReadStore{repo: repository.NewPolicyRepository(dbtx)}
}

func (s *PolicyReadStore) FindByCafeID(ctx context.Context, cafeID uuid.UUID) (*cancellation.Policy, error) {
	return s.repo.FindByCafeID(ctx, cafeID)
}
