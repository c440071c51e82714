package request

import (
	"strings"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/pkg/patch"
	"refund-settlement-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type CancelReservationRequest struct {
	Reason string  `json:"reason" binding:"required"`
	Note   *string `json:"note,omitempty" binding:"omitempty,max=500"`
}

func (r CancelReservationRequest) GetNote() *string {
	if r.Note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.Note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CancelReservationRequest) ToCommand(reservationID uuid.UUID, actor user.Actor) (commands.CancelRequest, error) {
	reason, err := cancellation.ParseReason(r.Reason)
	if err != nil {
		return commands.CancelRequest{}, err
	}
	return commands.CancelRequest{
		ReservationID: reservationID,
		Reason:        reason,
		Note:          r.GetNote(),
		Actor:         actor,
	}, nil
}

type UpsertPolicyRequest struct {
	FreeCancellationHours *int     `json:"free_cancellation_hours" binding:"required,min=0"`
	EarlyRefundRate       *float64 `json:"early_refund_rate" binding:"required,min=0,max=100"`
	StandardRefundRate    *float64 `json:"standard_refund_rate" binding:"required,min=0,max=100"`
	LateRefundRate        *float64 `json:"late_refund_rate,omitempty" binding:"omitempty,min=0,max=100"`
	NoRefundBeforeHours   *int     `json:"no_refund_before_hours" binding:"required,min=0"`
}

// ToCommand maps the body onto a policy. An omitted late rate keeps the
// default of no refund inside the standard window.
func (r UpsertPolicyRequest) ToCommand(cafeID uuid.UUID, actor user.Actor) commands.UpsertPolicyRequest {
	return commands.UpsertPolicyRequest{
		CafeID: cafeID,
		Policy: cancellation.Policy{
			FreeCancellationHours: *r.FreeCancellationHours,
			EarlyRefundRate:       *r.EarlyRefundRate,
			StandardRefundRate:    *r.StandardRefundRate,
			LateRefundRate:        patch.Coalesce(r.LateRefundRate, cancellation.DefaultPolicy().LateRefundRate),
			NoRefundBeforeHours:   *r.NoRefundBeforeHours,
		},
		Actor: actor,
	}
}
