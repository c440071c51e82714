package cancellation

import "fmt"

type Tier string

const (
	TierEarly    Tier = "EARLY"
	TierStandard Tier = "STANDARD"
	TierLate     Tier = "LATE"
	TierClosed   Tier = "CLOSED"
)

const ReasonAlreadyStarted = "reservation has already started"

// Evaluation is the outcome of applying a policy at a point in time.
type Evaluation struct {
	Tier           Tier
	FeeRatePercent float64
	CanCancel      bool
	Reason         string
}

// Evaluate maps hours-before-start onto a fee tier. Each threshold is
// inclusive at its lower bound: exactly FreeCancellationHours is early and
// exactly NoRefundBeforeHours is standard.
func Evaluate(p Policy, hoursBeforeStart int) Evaluation {
	switch {
	case hoursBeforeStart < 0:
		return Evaluation{Tier: TierClosed, FeeRatePercent: 100, Reason: ReasonAlreadyStarted}
	case hoursBeforeStart < p.NoRefundBeforeHours:
		if p.LateRefundRate > 0 {
			return Evaluation{Tier: TierLate, FeeRatePercent: 100 - p.LateRefundRate, CanCancel: true}
		}
		return Evaluation{
			Tier:           TierClosed,
			FeeRatePercent: 100,
			Reason:         fmt.Sprintf("cancellation is not allowed within %d hours of start", p.NoRefundBeforeHours),
		}
	case hoursBeforeStart >= p.FreeCancellationHours:
		return Evaluation{Tier: TierEarly, FeeRatePercent: 100 - p.EarlyRefundRate, CanCancel: true}
	default:
		return Evaluation{Tier: TierStandard, FeeRatePercent: 100 - p.StandardRefundRate, CanCancel: true}
	}
}
