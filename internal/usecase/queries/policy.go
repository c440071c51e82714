package queries

import (
	"context"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/infra"

	"github.com/google/uuid"
)

type PolicyQueries interface {
	// GetPolicy falls back to the default policy when the cafe has none.
	GetPolicy(ctx context.Context, cafeID uuid.UUID) (*PolicyView, error)
}

type policyQueriesImpl struct {
	store PolicyReadStore
}

func NewPolicyQueries(store PolicyReadStore) PolicyQueries {
	return &policyQueriesImpl{store: store}
}

func (q *policyQueriesImpl) GetPolicy(ctx context.Context, cafeID uuid.UUID) (*PolicyView, error) {
	return loadPolicy(ctx, q.store, cafeID)
}

func loadPolicy(ctx context.Context, store PolicyReadStore, cafeID uuid.UUID) (*PolicyView, error) {
	p, err := store.FindByCafeID(ctx, cafeID)
	switch {
	case err == nil:
		return policyView(cafeID, *p, false), nil
	case infra.IsKind(err, infra.KindNotFound):
		return policyView(cafeID, cancellation.DefaultPolicy(), true), nil
	default:
		return nil, err
	}
}

func policyView(cafeID uuid.UUID, p cancellation.Policy, isDefault bool) *PolicyView {
	return &PolicyView{
		CafeID:                cafeID,
		IsDefault:             isDefault,
		FreeCancellationHours: p.FreeCancellationHours,
		EarlyRefundRate:       p.EarlyRefundRate,
		StandardRefundRate:    p.StandardRefundRate,
		LateRefundRate:        p.LateRefundRate,
		NoRefundBeforeHours:   p.NoRefundBeforeHours,
		Description:           p.Describe(),
	}
}

func (v *PolicyView) policy() cancellation.Policy {
	return cancellation.Policy{
		FreeCancellationHours: v.FreeCancellationHours,
		EarlyRefundRate:       v.EarlyRefundRate,
		StandardRefundRate:    v.StandardRefundRate,
		LateRefundRate:        v.LateRefundRate,
		NoRefundBeforeHours:   v.NoRefundBeforeHours,
	}
}
