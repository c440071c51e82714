package refund

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one immutable row of the audit trail. PreviousStatus is nil
// only for the entry that creates the refund.
type LogEntry struct {
	RefundID       uuid.UUID
	PreviousStatus *Status
	NewStatus      Status
	Reason         string
	Actor          string
	CreatedAt      time.Time
}

func (e LogEntry) IsCreation() bool {
	return e.PreviousStatus == nil
}
