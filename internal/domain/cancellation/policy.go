package cancellation

import (
	"fmt"
	"strconv"
	"strings"

	"refund-settlement-engine/internal/pkg/errs"
)

var ErrInvalidPolicy = errs.NewKind("invalid cancellation policy", errs.ErrInvalidState)

// Policy is a per-cafe cancellation fee schedule. Rates are refund
// percentages between 0 and 100.
type Policy struct {
	FreeCancellationHours int
	EarlyRefundRate       float64
	StandardRefundRate    float64
	LateRefundRate        float64
	NoRefundBeforeHours   int
}

// DefaultPolicy applies to cafes without a stored policy.
func DefaultPolicy() Policy {
	return Policy{
		FreeCancellationHours: 24,
		EarlyRefundRate:       100,
		StandardRefundRate:    50,
		LateRefundRate:        0,
		NoRefundBeforeHours:   2,
	}
}

func (p Policy) Validate() error {
	if p.FreeCancellationHours < 0 || p.NoRefundBeforeHours < 0 {
		return errs.Wrap(ErrInvalidPolicy, "hours must not be negative")
	}
	if p.NoRefundBeforeHours > p.FreeCancellationHours {
		return errs.Wrap(ErrInvalidPolicy, "no-refund cutoff exceeds free cancellation window")
	}
	for name, rate := range map[string]float64{
		"early":    p.EarlyRefundRate,
		"standard": p.StandardRefundRate,
		"late":     p.LateRefundRate,
	} {
		if rate < 0 || rate > 100 {
			return errs.Wrapf(ErrInvalidPolicy, "%s refund rate %v out of range", name, rate)
		}
	}
	return nil
}

// Describe renders the policy as customer-facing text.
func (p Policy) Describe() string {
	var parts []string

	if p.EarlyRefundRate >= 100 {
		parts = append(parts, fmt.Sprintf("Free cancellation up to %d hours before start.", p.FreeCancellationHours))
	} else {
		parts = append(parts, fmt.Sprintf("%s%% refund %d or more hours before start.",
			formatRate(p.EarlyRefundRate), p.FreeCancellationHours))
	}

	if p.NoRefundBeforeHours < p.FreeCancellationHours {
		parts = append(parts, fmt.Sprintf("%s%% refund between %d and %d hours before start.",
			formatRate(p.StandardRefundRate), p.NoRefundBeforeHours, p.FreeCancellationHours))
	}

	if p.NoRefundBeforeHours > 0 {
		if p.LateRefundRate > 0 {
			parts = append(parts, fmt.Sprintf("%s%% refund within %d hours of start.",
				formatRate(p.LateRefundRate), p.NoRefundBeforeHours))
		} else {
			parts = append(parts, fmt.Sprintf("No cancellation within %d hours of start.", p.NoRefundBeforeHours))
		}
	}

	return strings.Join(parts, " ")
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
