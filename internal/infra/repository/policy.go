package repository

import (
	"context"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/infra/db"
	"refund-settlement-engine/internal/infra/repository/converter"
	"refund-settlement-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	selectPolicyByCafe = `SELECT ` + converter.PolicyColumns + `
		FROM cancellation_policies WHERE cafe_id = $1`

	upsertPolicy = `INSERT INTO cancellation_policies (cafe_id, ` + converter.PolicyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cafe_id) DO UPDATE SET
			free_cancellation_hours = EXCLUDED.free_cancellation_hours,
			early_refund_rate = EXCLUDED.early_refund_rate,
			standard_refund_rate = EXCLUDED.standard_refund_rate,
			late_refund_rate = EXCLUDED.late_refund_rate,
			no_refund_before_hours = EXCLUDED.no_refund_before_hours,
			updated_at = now()`
)

type PolicyRepository struct {
	db db.DBTX
}

func NewPolicyRepository(dbtx db.DBTX) *PolicyRepository {
	return &PolicyRepository{db: dbtx}
}

// FindByCafeID returns a NOT_FOUND repository error when the cafe has no
// policy of its own.
func (r *PolicyRepository) FindByCafeID(ctx context.Context, cafeID uuid.UUID) (*cancellation.Policy, error) {
	var p cancellation.Policy
	if err := r.db.QueryRow(ctx, selectPolicyByCafe, cafeID).Scan(converter.PolicyDest(&p)...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "cancellation policy not found", err)
		}
		return nil, infra.ClassifyPgErr("failed to get cancellation policy", err)
	}
	return &p, nil
}

func (r *PolicyRepository) Upsert(ctx context.Context, cafeID uuid.UUID, p cancellation.Policy) error {
	_, err := r.db.Exec(ctx, upsertPolicy,
		cafeID, p.FreeCancellationHours, p.EarlyRefundRate, p.StandardRefundRate, p.LateRefundRate, p.NoRefundBeforeHours)
	if err != nil {
		return infra.ClassifyPgErr("failed to upsert cancellation policy", err)
	}
	return nil
}
