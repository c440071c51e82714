package cancellation

import (
	"math"
	"math/bits"
	"time"

	"refund-settlement-engine/internal/domain/reservation"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/errs"
)

var ErrCancellationNotAllowed = errs.NewKind("cancellation not allowed", errs.ErrPolicyViolation)

// Quote is computed on demand and never persisted.
// RefundAmount + FeeAmount always equals OriginalAmount.
type Quote struct {
	OriginalAmount   int64
	RefundAmount     int64
	FeeAmount        int64
	FeeRatePercent   float64
	HoursBeforeStart int
	Tier             Tier
	CanCancel        bool
	Reason           string
}

func (q Quote) RefundRatePercent() float64 {
	return 100 - q.FeeRatePercent
}

// Err returns ErrCancellationNotAllowed carrying the reason when the quote forbids cancellation.
func (q Quote) Err() error {
	if q.CanCancel {
		return nil
	}
	return errs.Wrap(ErrCancellationNotAllowed, q.Reason)
}

type Calculator struct {
	clock clock.Clock
}

func NewCalculator(clk clock.Clock) *Calculator {
	return &Calculator{clock: clk}
}

// Quote prices a cancellation of res right now.
func (c *Calculator) Quote(res *reservation.Reservation, pay *reservation.Payment, p Policy) (Quote, error) {
	if err := res.CheckCancellable(); err != nil {
		return Quote{}, err
	}
	if !pay.IsCompleted() {
		return Quote{}, reservation.ErrPaymentNotFound
	}
	return QuoteAt(pay.Amount, res.StartTime(), c.clock.Now(), p), nil
}

// QuoteAt is the pure pricing step behind Calculator.Quote.
func QuoteAt(amount int64, start, now time.Time, p Policy) Quote {
	hours := HoursBeforeStart(start, now)
	ev := Evaluate(p, hours)
	fee := FeeAmount(amount, ev.FeeRatePercent)
	return Quote{
		OriginalAmount:   amount,
		RefundAmount:     amount - fee,
		FeeAmount:        fee,
		FeeRatePercent:   ev.FeeRatePercent,
		HoursBeforeStart: hours,
		Tier:             ev.Tier,
		CanCancel:        ev.CanCancel,
		Reason:           ev.Reason,
	}
}

// HoursBeforeStart floors toward negative infinity, so any time past the
// start yields a negative value.
func HoursBeforeStart(start, now time.Time) int {
	return int(math.Floor(start.Sub(now).Hours()))
}

// FeeAmount rounds half up in integer arithmetic on hundredths of a percent
// and is clamped to [0, amount]. The product is taken in 128 bits so any
// int64 amount is priced without overflow.
func FeeAmount(amount int64, feeRatePercent float64) int64 {
	if amount <= 0 {
		return 0
	}
	bp := int64(math.Round(feeRatePercent * 100))
	switch {
	case bp <= 0:
		return 0
	case bp >= 10000:
		return amount
	}
	hi, lo := bits.Mul64(uint64(amount), uint64(bp))
	lo, carry := bits.Add64(lo, 5000, 0)
	fee, _ := bits.Div64(hi+carry, lo, 10000)
	return int64(fee)
}
