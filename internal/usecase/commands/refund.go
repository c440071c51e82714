package commands

import (
	"context"
	"log/slog"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/pkg/retry"
	"refund-settlement-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUnauthorizedCancellation = errs.NewKind("actor may not cancel this reservation", errs.ErrUnauthorized)
	ErrAdminRequired            = errs.NewKind("administrator role required", errs.ErrUnauthorized)
	ErrMaxRetryExceeded         = errs.NewKind("maximum refund retries exceeded", errs.ErrRetryExhausted)
	ErrRefundProcessingFailed   = errs.NewKind("refund processing failed", errs.ErrGatewayFailure)
	ErrGatewayTimeout           = errs.NewKind("gateway timeout", errs.ErrGatewayFailure)
	ErrDatabaseOperationFailed  = errs.New("database operation failed")
)

type CancelRequest struct {
	ReservationID uuid.UUID
	Reason        cancellation.Reason
	Note          *string
	Actor         user.Actor
}

type UpdateStatusRequest struct {
	RefundID uuid.UUID
	Status   refund.Status
	Note     *string
	Actor    user.Actor
}

type RefundResult struct {
	RefundID       uuid.UUID
	ReservationID  uuid.UUID
	OriginalAmount int64
	RefundAmount   int64
	FeeAmount      int64
	Status         refund.Status
	RetryCount     int
	TransactionID  *string
	FailureReason  *string
}

type RefundCommands interface {
	// Cancel cancels the reservation and settles the refund. When the gateway
	// fails the reservation stays cancelled, the refund is FAILED, and both the
	// result and ErrRefundProcessingFailed are returned.
	Cancel(ctx context.Context, req CancelRequest) (*RefundResult, error)
	// RetryRefund re-runs settlement of a FAILED refund. It returns the result
	// together with ErrRefundProcessingFailed when the gateway fails again.
	RetryRefund(ctx context.Context, refundID uuid.UUID, actor user.Actor) (*RefundResult, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*RefundResult, error)
}

type refundCommandsImpl struct {
	uow           shared.UnitOfWork
	clock         clock.Clock
	calculator    *cancellation.Calculator
	gateway       GatewayClient
	publisher     EventPublisher
	escalator     Escalator
	metrics       Metrics
	retryPolicy   retry.Policy
	gatewayPolicy retry.Policy
	timeout       time.Duration
}

func NewRefundCommands(
	uow shared.UnitOfWork,
	clk clock.Clock,
	gateway GatewayClient,
	publisher EventPublisher,
	escalator Escalator,
	metrics Metrics,
	cfg config.Config,
) RefundCommands {
	rc := cfg.Refund
	return &refundCommandsImpl{
		uow:         uow,
		clock:       clk,
		calculator:  cancellation.NewCalculator(clk),
		gateway:     gateway,
		publisher:   publisher,
		escalator:   escalator,
		metrics:     metrics,
		retryPolicy: retry.Policy{MaxAttempts: rc.MaxRetries},
		gatewayPolicy: retry.Policy{
			MaxAttempts: rc.GatewayAttempts,
			BaseDelay:   rc.GatewayBackoff,
			MaxDelay:    rc.GatewayTimeout,
			Retryable:   isTransientGatewayErr,
			OnRetry: func(attempt int, wait time.Duration, err error) {
				slog.Warn("retrying gateway refund call", "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err.Error())
			},
		},
		timeout: rc.GatewayTimeout,
	}
}

func (c *refundCommandsImpl) Cancel(ctx context.Context, req CancelRequest) (*RefundResult, error) {
	if !req.Reason.IsValid() {
		return nil, errs.Wrapf(cancellation.ErrInvalidReason, "%q", req.Reason)
	}

	var (
		created    *refund.Refund
		paymentRef string
		entries    []refund.LogEntry
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created, paymentRef, entries = nil, "", nil

		res, err := tx.Reservations().FindByIDForUpdate(ctx, req.ReservationID)
		if err != nil {
			return notFoundOr(err, reservation.ErrReservationNotFound)
		}
		if !req.Actor.CanActFor(res.UserID()) {
			return ErrUnauthorizedCancellation
		}

		existing, err := tx.Refunds().FindByReservationID(ctx, res.ID())
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if existing != nil {
			return refund.ErrRefundAlreadyExists
		}
		if err = res.CheckCancellable(); err != nil {
			return err
		}

		pay, err := tx.Payments().FindByReservationID(ctx, res.ID())
		if err != nil {
			return notFoundOr(err, reservation.ErrPaymentNotFound)
		}
		policy, err := policyFor(ctx, tx, res.CafeID())
		if err != nil {
			return err
		}
		quote, err := c.calculator.Quote(res, pay, policy)
		if err != nil {
			return err
		}
		if err = quote.Err(); err != nil {
			return err
		}

		now := c.clock.Now()
		if err = res.Cancel(req.Reason.String(), req.Note, now); err != nil {
			return err
		}
		if err = tx.Reservations().SaveCancellation(ctx, res); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		r, entry, err := refund.New(res.ID(), quote, pay.Method, req.Reason.String(), req.Actor.Ref(), now)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		if !r.NeedsSettlement() {
			if entry, err = r.SettleWithoutGateway(refund.SystemActor, now); err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		if err = tx.Refunds().Create(ctx, r); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return refund.ErrRefundAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err = tx.RefundLogs().Append(ctx, entries...); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		created, paymentRef = r, pay.TransactionID
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.afterCommit(ctx, created, entries)
	slog.Info("reservation cancelled",
		"reservation_id", req.ReservationID,
		"refund_id", created.ID(),
		"refund_amount", created.RefundAmount(),
		"fee_amount", created.FeeAmount())

	if !created.NeedsSettlement() {
		return toResult(created), nil
	}
	return c.settle(ctx, created, paymentRef, refund.SystemActor)
}

func (c *refundCommandsImpl) RetryRefund(ctx context.Context, refundID uuid.UUID, actor user.Actor) (*RefundResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}

	var (
		processing *refund.Refund
		paymentRef string
		entry      refund.LogEntry
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Refunds().FindByIDForUpdate(ctx, refundID)
		if err != nil {
			return notFoundOr(err, refund.ErrRefundNotFound)
		}
		if err = r.CheckRetryable(); err != nil {
			return err
		}
		if c.retryPolicy.Allow(r.RetryCount()) != nil {
			return errs.Wrapf(ErrMaxRetryExceeded, "refund %s already retried %d times", r.ID(), r.RetryCount())
		}

		pay, err := tx.Payments().FindByReservationID(ctx, r.ReservationID())
		if err != nil {
			return notFoundOr(err, reservation.ErrPaymentNotFound)
		}

		if entry, err = r.BeginRetry(actor.Ref(), c.clock.Now()); err != nil {
			return err
		}
		if err = tx.Refunds().Update(ctx, r); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err = tx.RefundLogs().Append(ctx, entry); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		processing, paymentRef = r, pay.TransactionID
		return nil
	})
	if err != nil {
		if errs.Is(err, ErrMaxRetryExceeded) {
			slog.Warn("refund retry rejected", "refund_id", refundID, "error", err.Error())
		}
		return nil, err
	}

	c.afterCommit(ctx, processing, []refund.LogEntry{entry})
	return c.settle(ctx, processing, paymentRef, actor.Ref())
}

func (c *refundCommandsImpl) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*RefundResult, error) {
	if !req.Actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if !req.Status.IsValid() {
		return nil, errs.Wrapf(refund.ErrUnknownStatus, "%q", req.Status)
	}

	var (
		updated *refund.Refund
		entry   refund.LogEntry
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Refunds().FindByIDForUpdate(ctx, req.RefundID)
		if err != nil {
			return notFoundOr(err, refund.ErrRefundNotFound)
		}
		if entry, err = r.Override(req.Status, req.Actor.Ref(), req.Note, c.clock.Now()); err != nil {
			return err
		}
		if err = tx.Refunds().Update(ctx, r); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err = tx.RefundLogs().Append(ctx, entry); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.afterCommit(ctx, updated, []refund.LogEntry{entry})
	slog.Info("refund status overridden",
		"refund_id", req.RefundID,
		"from", entry.PreviousStatus,
		"to", entry.NewStatus,
		"actor", req.Actor.Ref())
	return toResult(updated), nil
}

// settle runs the gateway call for a committed PENDING or PROCESSING refund
// and records the outcome. It is detached from caller cancellation so an
// aborted request cannot leave the refund without an outcome.
func (c *refundCommandsImpl) settle(ctx context.Context, r *refund.Refund, paymentRef, actor string) (*RefundResult, error) {
	ctx = context.WithoutCancel(ctx)

	from := r.Status()
	res, callErr := c.callGateway(ctx, GatewayRefundRequest{
		RefundID:         r.ID(),
		Attempt:          r.RetryCount(),
		PaymentReference: paymentRef,
		Amount:           r.RefundAmount(),
		Reason:           r.RefundReason(),
	})

	var (
		final   *refund.Refund
		entries []refund.LogEntry
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		final, entries = nil, nil

		cur, err := tx.Refunds().FindByIDForUpdate(ctx, r.ID())
		if err != nil {
			return notFoundOr(err, refund.ErrRefundNotFound)
		}
		if cur.Status() != from {
			final = cur
			return nil
		}

		var entry refund.LogEntry
		now := c.clock.Now()
		if callErr == nil {
			entry, err = cur.Complete(res.TransactionID, actor, now)
		} else {
			entry, err = cur.Fail(failureReason(callErr), actor, now)
		}
		if err != nil {
			return err
		}
		if err = tx.Refunds().Update(ctx, cur); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err = tx.RefundLogs().Append(ctx, entry); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		final, entries = cur, []refund.LogEntry{entry}
		return nil
	})
	if err != nil {
		attrs := []any{"refund_id", r.ID(), "status", from, "error", err.Error()}
		if res != nil && callErr == nil {
			attrs = append(attrs, "transaction_id", res.TransactionID)
		}
		slog.Error("failed to record gateway outcome; refund needs reconciliation", attrs...)
		return nil, errs.Wrap(err, "record gateway outcome")
	}

	if len(entries) == 0 {
		attrs := []any{"refund_id", r.ID(), "expected", from, "actual", final.Status()}
		if callErr == nil {
			attrs = append(attrs, "transaction_id", res.TransactionID)
		}
		slog.Error("refund changed during settlement; gateway outcome dropped", attrs...)
		return toResult(final), nil
	}
	c.afterCommit(ctx, final, entries)

	if final.Status() != refund.StatusFailed {
		slog.Info("refund completed", "refund_id", final.ID(), "transaction_id", res.TransactionID)
		return toResult(final), nil
	}

	reason := failureReason(callErr)
	slog.Warn("refund failed", "refund_id", final.ID(), "retry_count", final.RetryCount(), "reason", reason)
	if c.retryPolicy.Allow(final.RetryCount()) != nil {
		c.escalate(ctx, final, reason)
	}
	return toResult(final), errs.Wrapf(ErrRefundProcessingFailed, "refund %s: %s", final.ID(), reason)
}

func (c *refundCommandsImpl) callGateway(ctx context.Context, req GatewayRefundRequest) (*GatewayResult, error) {
	return retry.Do(ctx, c.gatewayPolicy, func(ctx context.Context, _ int) (*GatewayResult, error) {
		return c.invokeGateway(ctx, req)
	})
}

type gatewayOutcome struct {
	res *GatewayResult
	err error
}

// invokeGateway bounds one call by the configured timeout even when the
// client ignores its context, and turns panics and declines into errors.
func (c *refundCommandsImpl) invokeGateway(ctx context.Context, req GatewayRefundRequest) (*GatewayResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	done := make(chan gatewayOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- gatewayOutcome{err: errs.Newf("gateway panic: %v", p)}
			}
		}()
		res, err := c.gateway.Refund(callCtx, req)
		done <- gatewayOutcome{res: res, err: err}
	}()

	var out gatewayOutcome
	select {
	case out = <-done:
	case <-callCtx.Done():
		out.err = errs.Wrapf(ErrGatewayTimeout, "no response within %s", c.timeout)
	}

	outcome := GatewayOutcomeSuccess
	switch {
	case out.err != nil && errs.Is(out.err, ErrGatewayTimeout):
		outcome = GatewayOutcomeTimeout
	case out.err != nil:
		outcome = GatewayOutcomeError
	case out.res == nil || !out.res.Success:
		outcome = GatewayOutcomeDeclined
		out.err = declined(out.res)
	}
	c.metrics.ObserveGatewayCall(outcome, time.Since(started))

	if out.err != nil {
		return nil, out.err
	}
	return out.res, nil
}

func (c *refundCommandsImpl) afterCommit(ctx context.Context, r *refund.Refund, entries []refund.LogEntry) {
	if len(entries) == 0 {
		return
	}
	events := make([]RefundEvent, 0, len(entries))
	for _, e := range entries {
		c.metrics.ObserveTransition(e.PreviousStatus, e.NewStatus)
		events = append(events, RefundEvent{
			RefundID:       e.RefundID,
			ReservationID:  r.ReservationID(),
			PreviousStatus: e.PreviousStatus,
			NewStatus:      e.NewStatus,
			Reason:         e.Reason,
			Actor:          e.Actor,
			OccurredAt:     e.CreatedAt,
		})
	}
	if err := c.publisher.Publish(ctx, events...); err != nil {
		slog.Warn("failed to publish refund events", "refund_id", r.ID(), "count", len(events), "error", err.Error())
	}
}

func (c *refundCommandsImpl) escalate(ctx context.Context, r *refund.Refund, reason string) {
	notice := EscalationNotice{
		RefundID:      r.ID(),
		ReservationID: r.ReservationID(),
		RefundAmount:  r.RefundAmount(),
		RetryCount:    r.RetryCount(),
		FailureReason: reason,
		OccurredAt:    c.clock.Now(),
	}
	slog.Error("refund retries exhausted; manual intervention required",
		"refund_id", r.ID(), "retry_count", r.RetryCount(), "reason", reason)
	if err := c.escalator.Escalate(ctx, notice); err != nil {
		slog.Error("failed to escalate refund", "refund_id", r.ID(), "error", err.Error())
	}
}

func policyFor(ctx context.Context, tx shared.Tx, cafeID uuid.UUID) (cancellation.Policy, error) {
	p, err := tx.Policies().FindByCafeID(ctx, cafeID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return cancellation.DefaultPolicy(), nil
		}
		return cancellation.Policy{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return *p, nil
}

func notFoundOr(err, notFound error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return notFound
	}
	return errs.Mark(err, ErrDatabaseOperationFailed)
}

func declined(res *GatewayResult) error {
	if res == nil || res.Message == "" {
		return errs.NewKind("gateway declined refund", errs.ErrGatewayFailure)
	}
	return errs.NewKind(res.Message, errs.ErrGatewayFailure)
}

func isTransientGatewayErr(err error) bool {
	return errs.Is(err, ErrGatewayTransient) || errs.Is(err, ErrGatewayTimeout)
}

func failureReason(err error) string {
	if errs.Is(err, ErrGatewayTimeout) {
		return "gateway timeout"
	}
	return err.Error()
}

func toResult(r *refund.Refund) *RefundResult {
	return &RefundResult{
		RefundID:       r.ID(),
		ReservationID:  r.ReservationID(),
		OriginalAmount: r.OriginalAmount(),
		RefundAmount:   r.RefundAmount(),
		FeeAmount:      r.FeeAmount(),
		Status:         r.Status(),
		RetryCount:     r.RetryCount(),
		TransactionID:  r.TransactionID(),
		FailureReason:  r.FailureReason(),
	}
}
