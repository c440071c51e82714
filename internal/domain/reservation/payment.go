package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the captured charge for a reservation. The engine only reads it.
type Payment struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	TransactionID string
	Amount        int64
	Method        string
	Status        PaymentStatus
	PaidAt        *time.Time
}

func (p *Payment) IsCompleted() bool {
	return p != nil && p.Status == PaymentCompleted
}
