package reservation

import (
	"errors"
	"time"
)

var ErrInvalidTimeSlot = errors.New("start time must be before end time")

type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// HasStarted is true from the start instant onwards.
func (ts TimeSlot) HasStarted(now time.Time) bool {
	return !now.Before(ts.start)
}
