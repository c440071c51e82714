package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"
)

var ErrStripeNotConfigured = errs.New("stripe secret key is not configured")

type refundCreator interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeClient refunds payment intents (pi_...) or charges (ch_...).
// Stripe replays the stored response for a known idempotency key, failures
// included, so the key changes with every settlement attempt.
type StripeClient struct {
	refunds refundCreator
}

func NewStripeClient(cfg config.GatewayConfig) (*StripeClient, error) {
	if cfg.StripeSecretKey == "" {
		return nil, ErrStripeNotConfigured
	}
	return &StripeClient{
		refunds: refund.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.StripeSecretKey},
	}, nil
}

// IdempotencyKey is refund-<id>-<attempt>.
func IdempotencyKey(req commands.GatewayRefundRequest) string {
	return "refund-" + req.RefundID.String() + "-" + strconv.Itoa(req.Attempt)
}

func (c *StripeClient) Refund(ctx context.Context, req commands.GatewayRefundRequest) (*commands.GatewayResult, error) {
	params := &stripe.RefundParams{
		Params: stripe.Params{Context: ctx},
		Amount: stripe.Int64(req.Amount),
		Reason: stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if strings.HasPrefix(req.PaymentReference, "ch_") {
		params.Charge = stripe.String(req.PaymentReference)
	} else {
		params.PaymentIntent = stripe.String(req.PaymentReference)
	}
	params.SetIdempotencyKey(IdempotencyKey(req))
	params.AddMetadata("refund_id", req.RefundID.String())
	params.AddMetadata("attempt", strconv.Itoa(req.Attempt))
	params.AddMetadata("reason", req.Reason)

	r, err := c.refunds.New(params)
	if err != nil {
		return nil, classifyStripeErr(err)
	}

	slog.Info("stripe refund created", "refund_id", req.RefundID, "stripe_refund_id", r.ID, "status", r.Status)
	switch r.Status {
	case stripe.RefundStatusSucceeded, stripe.RefundStatusPending:
		return &commands.GatewayResult{TransactionID: r.ID, Success: true, Message: string(r.Status)}, nil
	default:
		msg := "stripe refund " + string(r.Status)
		if r.FailureReason != "" {
			msg += ": " + string(r.FailureReason)
		}
		return &commands.GatewayResult{TransactionID: r.ID, Success: false, Message: msg}, nil
	}
}

// classifyStripeErr marks rate limits, 5xx and connection failures as
// transient. Card and request errors stay permanent.
func classifyStripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == http.StatusTooManyRequests || se.HTTPStatusCode >= http.StatusInternalServerError {
			return errs.Wrapf(commands.ErrGatewayTransient, "stripe %d: %s", se.HTTPStatusCode, se.Msg)
		}
		return errs.Wrapf(ErrStripeRejected, "stripe %s: %s", se.Type, se.Msg)
	}
	return errs.Wrap(commands.ErrGatewayTransient, err.Error())
}

var ErrStripeRejected = errs.NewKind("stripe rejected the refund", errs.ErrGatewayFailure)

var _ commands.GatewayClient = (*StripeClient)(nil)
