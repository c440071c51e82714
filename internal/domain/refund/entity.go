package refund

import (
	"fmt"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrRefundNotFound      = errs.NewKind("refund not found", errs.ErrNotFound)
	ErrRefundAlreadyExists = errs.NewKind("refund already exists for reservation", errs.ErrInvalidState)
	ErrInvalidRefundStatus = errs.NewKind("refund status does not allow this operation", errs.ErrInvalidState)
)

// Refund tracks money owed to a customer after a cancellation.
// Every state change returns the LogEntry that must be persisted with it.
type Refund struct {
	id               uuid.UUID
	reservationID    uuid.UUID
	originalAmount   int64
	refundAmount     int64
	feeAmount        int64
	appliedFeeRate   float64
	hoursBeforeStart int
	refundMethod     string
	refundReason     string
	status           Status
	retryCount       int
	transactionID    *string
	failureReason    *string
	adminNote        *string
	processedBy      *string
	processedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

// Record carries persisted column values for Reconstruct.
type Record struct {
	ID               uuid.UUID
	ReservationID    uuid.UUID
	OriginalAmount   int64
	RefundAmount     int64
	FeeAmount        int64
	AppliedFeeRate   float64
	HoursBeforeStart int
	RefundMethod     string
	RefundReason     string
	Status           Status
	RetryCount       int
	TransactionID    *string
	FailureReason    *string
	AdminNote        *string
	ProcessedBy      *string
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New opens a PENDING refund from an approved quote.
func New(reservationID uuid.UUID, q cancellation.Quote, method, reason, actor string, now time.Time) (*Refund, LogEntry, error) {
	if err := q.Err(); err != nil {
		return nil, LogEntry{}, err
	}
	r := &Refund{
		id:               uuid.New(),
		reservationID:    reservationID,
		originalAmount:   q.OriginalAmount,
		refundAmount:     q.RefundAmount,
		feeAmount:        q.FeeAmount,
		appliedFeeRate:   q.FeeRatePercent,
		hoursBeforeStart: q.HoursBeforeStart,
		refundMethod:     method,
		refundReason:     reason,
		status:           StatusPending,
		createdAt:        now,
		updatedAt:        now,
	}
	entry := r.entry(nil, StatusPending,
		fmt.Sprintf("cancellation requested - refund amount %d", q.RefundAmount), actor, now)
	return r, entry, nil
}

func Reconstruct(rec Record) *Refund {
	return &Refund{
		id:               rec.ID,
		reservationID:    rec.ReservationID,
		originalAmount:   rec.OriginalAmount,
		refundAmount:     rec.RefundAmount,
		feeAmount:        rec.FeeAmount,
		appliedFeeRate:   rec.AppliedFeeRate,
		hoursBeforeStart: rec.HoursBeforeStart,
		refundMethod:     rec.RefundMethod,
		refundReason:     rec.RefundReason,
		status:           rec.Status,
		retryCount:       rec.RetryCount,
		transactionID:    rec.TransactionID,
		failureReason:    rec.FailureReason,
		adminNote:        rec.AdminNote,
		processedBy:      rec.ProcessedBy,
		processedAt:      rec.ProcessedAt,
		createdAt:        rec.CreatedAt,
		updatedAt:        rec.UpdatedAt,
	}
}

// NeedsSettlement is true while money still has to move through the gateway.
func (r *Refund) NeedsSettlement() bool {
	return r.refundAmount > 0 && (r.status == StatusPending || r.status == StatusProcessing)
}

// SettleWithoutGateway completes a zero-amount refund.
func (r *Refund) SettleWithoutGateway(actor string, at time.Time) (LogEntry, error) {
	if r.status != StatusPending || r.refundAmount != 0 {
		return LogEntry{}, r.statusErr("settle without gateway")
	}
	return r.complete(nil, "no refund due", actor, at), nil
}

// Complete records a successful gateway settlement.
func (r *Refund) Complete(transactionID string, actor string, at time.Time) (LogEntry, error) {
	if r.status != StatusPending && r.status != StatusProcessing {
		return LogEntry{}, r.statusErr("complete")
	}
	return r.complete(&transactionID, "refund completed - transaction "+transactionID, actor, at), nil
}

// Fail records a gateway failure. The refund stays retryable.
func (r *Refund) Fail(reason string, actor string, at time.Time) (LogEntry, error) {
	if r.status != StatusPending && r.status != StatusProcessing {
		return LogEntry{}, r.statusErr("fail")
	}
	prev := r.status
	r.status = StatusFailed
	r.failureReason = &reason
	r.transactionID = nil
	r.updatedAt = at
	return r.entry(&prev, StatusFailed, "refund failed: "+reason, actor, at), nil
}

// CheckRetryable rejects retries outside FAILED.
func (r *Refund) CheckRetryable() error {
	if r.status != StatusFailed {
		return r.statusErr("retry")
	}
	return nil
}

// BeginRetry moves FAILED to PROCESSING. This is the only way into PROCESSING.
// The caller enforces the retry cap before calling it.
func (r *Refund) BeginRetry(actor string, at time.Time) (LogEntry, error) {
	if err := r.CheckRetryable(); err != nil {
		return LogEntry{}, err
	}
	prev := r.status
	r.status = StatusProcessing
	r.retryCount++
	r.failureReason = nil
	r.processedBy = &actor
	r.updatedAt = at
	return r.entry(&prev, StatusProcessing, fmt.Sprintf("retry attempt %d", r.retryCount), actor, at), nil
}

var overrideTargets = map[Status][]Status{
	StatusPending:    {StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusFailed:     {StatusCompleted},
}

// CanOverride reports whether an administrator may move the refund to target.
func (r *Refund) CanOverride(target Status) bool {
	for _, s := range overrideTargets[r.status] {
		if s == target {
			return true
		}
	}
	return false
}

// Override applies a manual reconciliation decision.
func (r *Refund) Override(target Status, actor string, note *string, at time.Time) (LogEntry, error) {
	if !r.CanOverride(target) {
		return LogEntry{}, errs.Wrapf(ErrInvalidRefundStatus, "override %s -> %s", r.status, target)
	}
	prev := r.status
	reason := fmt.Sprintf("status changed by administrator from %s to %s", prev, target)
	if note != nil && *note != "" {
		reason = *note
	}

	r.status = target
	r.adminNote = note
	r.processedBy = &actor
	r.updatedAt = at
	switch target {
	case StatusCompleted:
		r.failureReason = nil
		r.processedAt = &at
	case StatusFailed:
		r.failureReason = &reason
	}
	return r.entry(&prev, target, reason, actor, at), nil
}

func (r *Refund) complete(transactionID *string, reason, actor string, at time.Time) LogEntry {
	prev := r.status
	r.status = StatusCompleted
	r.transactionID = transactionID
	r.failureReason = nil
	r.processedBy = &actor
	r.processedAt = &at
	r.updatedAt = at
	return r.entry(&prev, StatusCompleted, reason, actor, at)
}

func (r *Refund) entry(prev *Status, next Status, reason, actor string, at time.Time) LogEntry {
	return LogEntry{
		RefundID:       r.id,
		PreviousStatus: prev,
		NewStatus:      next,
		Reason:         reason,
		Actor:          actor,
		CreatedAt:      at,
	}
}

func (r *Refund) statusErr(op string) error {
	return errs.Wrapf(ErrInvalidRefundStatus, "%s from %s", op, r.status)
}

func (r *Refund) Record() Record {
	return Record{
		ID:               r.id,
		ReservationID:    r.reservationID,
		OriginalAmount:   r.originalAmount,
		RefundAmount:     r.refundAmount,
		FeeAmount:        r.feeAmount,
		AppliedFeeRate:   r.appliedFeeRate,
		HoursBeforeStart: r.hoursBeforeStart,
		RefundMethod:     r.refundMethod,
		RefundReason:     r.refundReason,
		Status:           r.status,
		RetryCount:       r.retryCount,
		TransactionID:    r.transactionID,
		FailureReason:    r.failureReason,
		AdminNote:        r.adminNote,
		ProcessedBy:      r.processedBy,
		ProcessedAt:      r.processedAt,
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
	}
}

func (r *Refund) ID() uuid.UUID            { return r.id }
func (r *Refund) ReservationID() uuid.UUID { return r.reservationID }
func (r *Refund) OriginalAmount() int64    { return r.originalAmount }
func (r *Refund) RefundAmount() int64      { return r.refundAmount }
func (r *Refund) FeeAmount() int64         { return r.feeAmount }
func (r *Refund) AppliedFeeRate() float64  { return r.appliedFeeRate }
func (r *Refund) HoursBeforeStart() int    { return r.hoursBeforeStart }
func (r *Refund) RefundMethod() string     { return r.refundMethod }
func (r *Refund) RefundReason() string     { return r.refundReason }
func (r *Refund) Status() Status           { return r.status }
func (r *Refund) RetryCount() int          { return r.retryCount }
func (r *Refund) TransactionID() *string   { return r.transactionID }
func (r *Refund) FailureReason() *string   { return r.failureReason }
func (r *Refund) AdminNote() *string       { return r.adminNote }
func (r *Refund) ProcessedBy() *string     { return r.processedBy }
func (r *Refund) ProcessedAt() *time.Time  { return r.processedAt }
func (r *Refund) CreatedAt() time.Time     { return r.createdAt }
func (r *Refund) UpdatedAt() time.Time     { return r.updatedAt }
