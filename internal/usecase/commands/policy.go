package commands

import (
	"context"
	"log/slog"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrStaffRequired = errs.NewKind("owner or administrator role required", errs.ErrUnauthorized)

type UpsertPolicyRequest struct {
	CafeID uuid.UUID
	Policy cancellation.Policy
	Actor  user.Actor
}

type PolicyCommands interface {
	Upsert(ctx context.Context, req UpsertPolicyRequest) (cancellation.Policy, error)
}

type policyCommandsImpl struct {
	uow         shared.UnitOfWork
	invalidator PolicyCacheInvalidator
}

func NewPolicyCommands(uow shared.UnitOfWork, invalidator PolicyCacheInvalidator) PolicyCommands {
	return &policyCommandsImpl{uow: uow, invalidator: invalidator}
}

// Upsert replaces the cafe's cancellation policy. Any owner may edit any
// cafe; cafe ownership is not modelled here.
func (c *policyCommandsImpl) Upsert(ctx context.Context, req UpsertPolicyRequest) (cancellation.Policy, error) {
	if !req.Actor.IsStaff() {
		return cancellation.Policy{}, ErrStaffRequired
	}
	if err := req.Policy.Validate(); err != nil {
		return cancellation.Policy{}, err
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Policies().Upsert(ctx, req.CafeID, req.Policy); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return cancellation.Policy{}, err
	}

	if err := c.invalidator.Invalidate(ctx, req.CafeID); err != nil {
		slog.Warn("failed to invalidate cached policy", "cafe_id", req.CafeID, "error", err.Error())
	}
	slog.Info("cancellation policy updated", "cafe_id", req.CafeID, "actor", req.Actor.Ref())
	return req.Policy, nil
}
