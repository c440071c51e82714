package commands

import (
	"context"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrGatewayTransient marks gateway errors worth another in-call attempt.
var ErrGatewayTransient = errs.NewKind("payment gateway temporarily unavailable", errs.ErrGatewayFailure)

type GatewayRefundRequest struct {
	RefundID uuid.UUID
	// Attempt is the refund's retry count. RefundID and Attempt together
	// identify one settlement, so in-call transient retries share a key
	// while each admin retry gets a fresh one.
	Attempt          int
	PaymentReference string
	Amount           int64
	Reason           string
}

type GatewayResult struct {
	TransactionID string
	Success       bool
	Message       string
}

// GatewayClient moves money back to the customer. Implementations may be
// slow, may return an error instead of a failed result, and are not assumed
// to be idempotent.
type GatewayClient interface {
	Refund(ctx context.Context, req GatewayRefundRequest) (*GatewayResult, error)
}

// RefundEvent mirrors one committed audit log entry.
type RefundEvent struct {
	RefundID       uuid.UUID      `json:"refundId"`
	ReservationID  uuid.UUID      `json:"reservationId"`
	PreviousStatus *refund.Status `json:"previousStatus"`
	NewStatus      refund.Status  `json:"newStatus"`
	Reason         string         `json:"reason"`
	Actor          string         `json:"actor"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

// EventPublisher is called after commit. Failures never undo a transition.
type EventPublisher interface {
	Publish(ctx context.Context, events ...RefundEvent) error
}

type EscalationNotice struct {
	RefundID      uuid.UUID
	ReservationID uuid.UUID
	RefundAmount  int64
	RetryCount    int
	FailureReason string
	OccurredAt    time.Time
}

// Escalator hands refunds that ran out of retries to a person.
type Escalator interface {
	Escalate(ctx context.Context, notice EscalationNotice) error
}

type Metrics interface {
	ObserveTransition(from *refund.Status, to refund.Status)
	ObserveGatewayCall(outcome string, elapsed time.Duration)
}

// PolicyCacheInvalidator drops cached policies after an upsert.
type PolicyCacheInvalidator interface {
	Invalidate(ctx context.Context, cafeID uuid.UUID) error
}

// Gateway call outcomes reported to Metrics.
const (
	GatewayOutcomeSuccess  = "success"
	GatewayOutcomeDeclined = "declined"
	GatewayOutcomeError    = "error"
	GatewayOutcomeTimeout  = "timeout"
)
