package queries

import (
	"context"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindPayment(ctx context.Context, reservationID uuid.UUID) (*reservation.Payment, error)
}

type PolicyReadStore interface {
	FindByCafeID(ctx context.Context, cafeID uuid.UUID) (*cancellation.Policy, error)
}

type CancellationQueries interface {
	CalculateFee(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*FeeView, error)
	// CanCancel reports state and policy refusals in the view instead of as errors.
	CanCancel(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*CanCancelView, error)
	GetCancellationDetails(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*CancellationDetailsView, error)
}

type cancellationQueriesImpl struct {
	reservations ReservationReadStore
	policies     PolicyReadStore
	refunds      RefundReadStore
	calculator   *cancellation.Calculator
}

func NewCancellationQueries(
	reservations ReservationReadStore,
	policies PolicyReadStore,
	refunds RefundReadStore,
	clk clock.Clock,
) CancellationQueries {
	return &cancellationQueriesImpl{
		reservations: reservations,
		policies:     policies,
		refunds:      refunds,
		calculator:   cancellation.NewCalculator(clk),
	}
}

func (q *cancellationQueriesImpl) CalculateFee(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*FeeView, error) {
	res, err := q.reservation(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}
	return q.quote(ctx, res)
}

func (q *cancellationQueriesImpl) CanCancel(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*CanCancelView, error) {
	res, err := q.reservation(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}
	fee, err := q.quote(ctx, res)
	if err != nil {
		if errs.Is(err, errs.ErrInvalidState) || errs.Is(err, reservation.ErrPaymentNotFound) {
			return &CanCancelView{Reason: reasonOf(err)}, nil
		}
		return nil, err
	}
	return &CanCancelView{CanCancel: fee.CanCancel, Reason: fee.Reason, Calculation: fee}, nil
}

func (q *cancellationQueriesImpl) GetCancellationDetails(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*CancellationDetailsView, error) {
	res, err := q.reservation(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}
	policy, err := loadPolicy(ctx, q.policies, res.CafeID())
	if err != nil {
		return nil, err
	}

	view := &CancellationDetailsView{
		Reservation: summarize(res),
		Policy:      *policy,
	}

	existing, err := q.refunds.FindByReservationID(ctx, res.ID())
	switch {
	case err == nil:
		view.Refund = existing
	case !infra.IsKind(err, infra.KindNotFound):
		return nil, err
	}

	fee, err := q.quote(ctx, res)
	switch {
	case err == nil:
		view.Quote = fee
		view.CanCancel = fee.CanCancel && view.Refund == nil
		view.Reason = fee.Reason
		if view.Refund != nil {
			view.Reason = reasonOf(refund.ErrRefundAlreadyExists)
		}
	case errs.Is(err, errs.ErrInvalidState) || errs.Is(err, reservation.ErrPaymentNotFound):
		view.Reason = reasonOf(err)
	default:
		return nil, err
	}
	return view, nil
}

func (q *cancellationQueriesImpl) reservation(ctx context.Context, id uuid.UUID, actor user.Actor) (*reservation.Reservation, error) {
	res, err := q.reservations.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, err
	}
	if !actor.CanActFor(res.UserID()) {
		return nil, ErrAccessDenied
	}
	return res, nil
}

func (q *cancellationQueriesImpl) quote(ctx context.Context, res *reservation.Reservation) (*FeeView, error) {
	if err := res.CheckCancellable(); err != nil {
		return nil, err
	}
	pay, err := q.reservations.FindPayment(ctx, res.ID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, reservation.ErrPaymentNotFound
		}
		return nil, err
	}
	pv, err := loadPolicy(ctx, q.policies, res.CafeID())
	if err != nil {
		return nil, err
	}
	quote, err := q.calculator.Quote(res, pay, pv.policy())
	if err != nil {
		return nil, err
	}
	return feeView(res.ID(), quote), nil
}

func feeView(reservationID uuid.UUID, qt cancellation.Quote) *FeeView {
	v := &FeeView{
		ReservationID:     reservationID,
		OriginalAmount:    qt.OriginalAmount,
		RefundAmount:      qt.RefundAmount,
		FeeAmount:         qt.FeeAmount,
		FeeRatePercent:    qt.FeeRatePercent,
		RefundRatePercent: qt.RefundRatePercent(),
		HoursBeforeStart:  qt.HoursBeforeStart,
		Tier:              qt.Tier,
		CanCancel:         qt.CanCancel,
	}
	if qt.Reason != "" {
		reason := qt.Reason
		v.Reason = &reason
	}
	return v
}

func summarize(res *reservation.Reservation) ReservationSummary {
	return ReservationSummary{
		ID:                 res.ID(),
		CafeID:             res.CafeID(),
		SeatID:             res.SeatID(),
		UserID:             res.UserID(),
		StartTime:          res.TimeSlot().Start(),
		EndTime:            res.TimeSlot().End(),
		TotalPrice:         res.TotalPrice(),
		Status:             res.Status().String(),
		CancellationReason: res.CancellationReason(),
		CancellationNote:   res.CancellationNote(),
		CancelledAt:        res.CancelledAt(),
	}
}

func reasonOf(err error) *string {
	msg := err.Error()
	return &msg
}
