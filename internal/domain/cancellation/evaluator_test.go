//go:build unit

package cancellation_test

import (
	"math/rand/v2"
	"testing"

	"refund-settlement-engine/internal/domain/cancellation"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	policy := cancellation.DefaultPolicy()

	cases := []struct {
		name  string
		hours int
		want  cancellation.Evaluation
	}{
		{
			name:  "well ahead of start is early tier",
			hours: 30,
			want:  cancellation.Evaluation{Tier: cancellation.TierEarly, FeeRatePercent: 0, CanCancel: true},
		},
		{
			name:  "exactly at free window is early tier",
			hours: 24,
			want:  cancellation.Evaluation{Tier: cancellation.TierEarly, FeeRatePercent: 0, CanCancel: true},
		},
		{
			name:  "one hour inside free window is standard tier",
			hours: 23,
			want:  cancellation.Evaluation{Tier: cancellation.TierStandard, FeeRatePercent: 50, CanCancel: true},
		},
		{
			name:  "between thresholds is standard tier",
			hours: 10,
			want:  cancellation.Evaluation{Tier: cancellation.TierStandard, FeeRatePercent: 50, CanCancel: true},
		},
		{
			name:  "exactly at cutoff is standard tier",
			hours: 2,
			want:  cancellation.Evaluation{Tier: cancellation.TierStandard, FeeRatePercent: 50, CanCancel: true},
		},
		{
			name:  "inside cutoff with no late refund is closed",
			hours: 1,
			want: cancellation.Evaluation{
				Tier:           cancellation.TierClosed,
				FeeRatePercent: 100,
				Reason:         "cancellation is not allowed within 2 hours of start",
			},
		},
		{
			name:  "start hour itself is closed",
			hours: 0,
			want: cancellation.Evaluation{
				Tier:           cancellation.TierClosed,
				FeeRatePercent: 100,
				Reason:         "cancellation is not allowed within 2 hours of start",
			},
		},
		{
			name:  "already started",
			hours: -1,
			want: cancellation.Evaluation{
				Tier:           cancellation.TierClosed,
				FeeRatePercent: 100,
				Reason:         cancellation.ReasonAlreadyStarted,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := cancellation.Evaluate(policy, c.hours)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("late refund rate allows cancellation inside cutoff", func(t *testing.T) {
		p := policy
		p.LateRefundRate = 20
		got := cancellation.Evaluate(p, 1)
		assert.True(t, got.CanCancel)
		assert.Equal(t, cancellation.TierLate, got.Tier)
		assert.InDelta(t, 80, got.FeeRatePercent, 1e-9)
		assert.Empty(t, got.Reason)
	})

	t.Run("late refund rate never reopens a started reservation", func(t *testing.T) {
		p := policy
		p.LateRefundRate = 20
		got := cancellation.Evaluate(p, -3)
		assert.False(t, got.CanCancel)
		assert.Equal(t, cancellation.ReasonAlreadyStarted, got.Reason)
	})
}

func TestEvaluateEarlyTierProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		cutoff := r.IntN(48)
		p := cancellation.Policy{
			FreeCancellationHours: cutoff + r.IntN(72),
			EarlyRefundRate:       float64(r.IntN(101)),
			StandardRefundRate:    float64(r.IntN(101)),
			LateRefundRate:        float64(r.IntN(101)),
			NoRefundBeforeHours:   cutoff,
		}
		hours := p.FreeCancellationHours + r.IntN(200)

		got := cancellation.Evaluate(p, hours)

		assert.True(t, got.CanCancel, "policy=%+v hours=%d", p, hours)
		assert.InDelta(t, 100-p.EarlyRefundRate, got.FeeRatePercent, 1e-9, "policy=%+v hours=%d", p, hours)
	}
}
