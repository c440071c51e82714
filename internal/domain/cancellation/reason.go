package cancellation

import "refund-settlement-engine/internal/pkg/errs"

var ErrInvalidReason = errs.NewKind("invalid cancellation reason", errs.ErrInvalidState)

type Reason string

const (
	ReasonUserRequest Reason = "USER_REQUEST"
	ReasonEmergency   Reason = "EMERGENCY"
	ReasonCafeClosure Reason = "CAFE_CLOSURE"
)

func (r Reason) String() string {
	return string(r)
}

func (r Reason) IsValid() bool {
	switch r {
	case ReasonUserRequest, ReasonEmergency, ReasonCafeClosure:
		return true
	default:
		return false
	}
}

func ParseReason(s string) (Reason, error) {
	r := Reason(s)
	if !r.IsValid() {
		return "", errs.Wrapf(ErrInvalidReason, "%q", s)
	}
	return r, nil
}
