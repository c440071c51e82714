package reservation

import (
	"time"

	"refund-settlement-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.NewKind("reservation not found", errs.ErrNotFound)
	ErrPaymentNotFound     = errs.NewKind("completed payment not found", errs.ErrNotFound)
	ErrAlreadyCancelled    = errs.NewKind("reservation is already cancelled", errs.ErrInvalidState)
	ErrAlreadyCompleted    = errs.NewKind("reservation is already completed", errs.ErrInvalidState)
)

// Reservation is owned by the booking subsystem. The engine reads it and
// writes only the CANCELLED transition with its metadata.
type Reservation struct {
	id                 uuid.UUID
	cafeID             uuid.UUID
	seatID             uuid.UUID
	userID             uuid.UUID
	timeSlot           TimeSlot
	totalPrice         int64
	status             Status
	cancellationReason *string
	cancellationNote   *string
	cancelledAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

// Record carries persisted column values for Reconstruct.
type Record struct {
	ID                 uuid.UUID
	CafeID             uuid.UUID
	SeatID             uuid.UUID
	UserID             uuid.UUID
	StartTime          time.Time
	EndTime            time.Time
	TotalPrice         int64
	Status             Status
	CancellationReason *string
	CancellationNote   *string
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func Reconstruct(rec Record) *Reservation {
	return &Reservation{
		id:                 rec.ID,
		cafeID:             rec.CafeID,
		seatID:             rec.SeatID,
		userID:             rec.UserID,
		timeSlot:           TimeSlot{start: rec.StartTime, end: rec.EndTime},
		totalPrice:         rec.TotalPrice,
		status:             rec.Status,
		cancellationReason: rec.CancellationReason,
		cancellationNote:   rec.CancellationNote,
		cancelledAt:        rec.CancelledAt,
		createdAt:          rec.CreatedAt,
		updatedAt:          rec.UpdatedAt,
	}
}

// CheckCancellable returns the state error that forbids cancellation, if any.
func (r *Reservation) CheckCancellable() error {
	switch r.status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrAlreadyCompleted
	default:
		return nil
	}
}

func (r *Reservation) Cancel(reason string, note *string, at time.Time) error {
	if err := r.CheckCancellable(); err != nil {
		return err
	}
	r.status = StatusCancelled
	r.cancellationReason = &reason
	r.cancellationNote = note
	r.cancelledAt = &at
	r.updatedAt = at
	return nil
}

func (r *Reservation) IsCancelled() bool {
	return r.status == StatusCancelled
}

func (r *Reservation) Record() Record {
	return Record{
		ID:                 r.id,
		CafeID:             r.cafeID,
		SeatID:             r.seatID,
		UserID:             r.userID,
		StartTime:          r.timeSlot.start,
		EndTime:            r.timeSlot.end,
		TotalPrice:         r.totalPrice,
		Status:             r.status,
		CancellationReason: r.cancellationReason,
		CancellationNote:   r.cancellationNote,
		CancelledAt:        r.cancelledAt,
		CreatedAt:          r.createdAt,
		UpdatedAt:          r.updatedAt,
	}
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) CafeID() uuid.UUID           { return r.cafeID }
func (r *Reservation) SeatID() uuid.UUID           { return r.seatID }
func (r *Reservation) UserID() uuid.UUID           { return r.userID }
func (r *Reservation) TimeSlot() TimeSlot          { return r.timeSlot }
func (r *Reservation) StartTime() time.Time        { return r.timeSlot.start }
func (r *Reservation) TotalPrice() int64           { return r.totalPrice }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) CancellationReason() *string { return r.cancellationReason }
func (r *Reservation) CancellationNote() *string   { return r.cancellationNote }
func (r *Reservation) CancelledAt() *time.Time     { return r.cancelledAt }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time        { return r.updatedAt }
