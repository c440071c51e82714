package queries

import (
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrAccessDenied = errs.NewKind("access denied", errs.ErrUnauthorized)

// FeeView is a cancellation quote for one reservation at the time of the call.
type FeeView struct {
	ReservationID     uuid.UUID         `json:"reservation_id"`
	OriginalAmount    int64             `json:"original_amount"`
	RefundAmount      int64             `json:"refund_amount"`
	FeeAmount         int64             `json:"fee_amount"`
	FeeRatePercent    float64           `json:"fee_rate_percent"`
	RefundRatePercent float64           `json:"refund_rate_percent"`
	HoursBeforeStart  int               `json:"hours_before_start"`
	Tier              cancellation.Tier `json:"tier"`
	CanCancel         bool              `json:"can_cancel"`
	Reason            *string           `json:"reason,omitempty"`
}

type CanCancelView struct {
	CanCancel   bool     `json:"can_cancel"`
	Reason      *string  `json:"reason,omitempty"`
	Calculation *FeeView `json:"calculation,omitempty"`
}

type PolicyView struct {
	CafeID                uuid.UUID `json:"cafe_id"`
	IsDefault             bool      `json:"is_default"`
	FreeCancellationHours int       `json:"free_cancellation_hours"`
	EarlyRefundRate       float64   `json:"early_refund_rate"`
	StandardRefundRate    float64   `json:"standard_refund_rate"`
	LateRefundRate        float64   `json:"late_refund_rate"`
	NoRefundBeforeHours   int       `json:"no_refund_before_hours"`
	Description           string    `json:"description"`
}

type ReservationSummary struct {
	ID                 uuid.UUID  `json:"id"`
	CafeID             uuid.UUID  `json:"cafe_id"`
	SeatID             uuid.UUID  `json:"seat_id"`
	UserID             uuid.UUID  `json:"user_id"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	TotalPrice         int64      `json:"total_price"`
	Status             string     `json:"status"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancellationNote   *string    `json:"cancellation_note,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

type CancellationDetailsView struct {
	Reservation ReservationSummary `json:"reservation"`
	Policy      PolicyView         `json:"policy"`
	CanCancel   bool               `json:"can_cancel"`
	Reason      *string            `json:"reason,omitempty"`
	Quote       *FeeView           `json:"quote,omitempty"`
	Refund      *RefundView        `json:"refund,omitempty"`
}

// RefundView is a refund joined with the reservation it belongs to.
type RefundView struct {
	ID               uuid.UUID     `json:"id"`
	ReservationID    uuid.UUID     `json:"reservation_id"`
	UserID           uuid.UUID     `json:"user_id"`
	CafeID           uuid.UUID     `json:"cafe_id"`
	OriginalAmount   int64         `json:"original_amount"`
	RefundAmount     int64         `json:"refund_amount"`
	FeeAmount        int64         `json:"fee_amount"`
	AppliedFeeRate   float64       `json:"applied_fee_rate"`
	HoursBeforeStart int           `json:"hours_before_start"`
	RefundMethod     string        `json:"refund_method"`
	RefundReason     string        `json:"refund_reason"`
	Status           refund.Status `json:"status"`
	RetryCount       int           `json:"retry_count"`
	TransactionID    *string       `json:"transaction_id,omitempty"`
	FailureReason    *string       `json:"failure_reason,omitempty"`
	AdminNote        *string       `json:"admin_note,omitempty"`
	ProcessedBy      *string       `json:"processed_by,omitempty"`
	ProcessedAt      *time.Time    `json:"processed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func NewRefundView(rec refund.Record, userID, cafeID uuid.UUID) *RefundView {
	return &RefundView{
		ID:               rec.ID,
		ReservationID:    rec.ReservationID,
		UserID:           userID,
		CafeID:           cafeID,
		OriginalAmount:   rec.OriginalAmount,
		RefundAmount:     rec.RefundAmount,
		FeeAmount:        rec.FeeAmount,
		AppliedFeeRate:   rec.AppliedFeeRate,
		HoursBeforeStart: rec.HoursBeforeStart,
		RefundMethod:     rec.RefundMethod,
		RefundReason:     rec.RefundReason,
		Status:           rec.Status,
		RetryCount:       rec.RetryCount,
		TransactionID:    rec.TransactionID,
		FailureReason:    rec.FailureReason,
		AdminNote:        rec.AdminNote,
		ProcessedBy:      rec.ProcessedBy,
		ProcessedAt:      rec.ProcessedAt,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

type RefundLogView struct {
	PreviousStatus *refund.Status `json:"previous_status,omitempty"`
	NewStatus      refund.Status  `json:"new_status"`
	Reason         string         `json:"reason"`
	Actor          string         `json:"actor"`
	CreatedAt      time.Time      `json:"created_at"`
}

type RefundDetailsView struct {
	RefundView
	Logs []*RefundLogView `json:"logs"`
}

type RefundListItem struct {
	ID            uuid.UUID     `json:"id"`
	ReservationID uuid.UUID     `json:"reservation_id"`
	CafeID        uuid.UUID     `json:"cafe_id"`
	RefundAmount  int64         `json:"refund_amount"`
	FeeAmount     int64         `json:"fee_amount"`
	Status        refund.Status `json:"status"`
	RetryCount    int           `json:"retry_count"`
	CreatedAt     time.Time     `json:"created_at"`
}

type RefundFilter struct {
	Status *refund.Status
	CafeID *uuid.UUID
}

// StatisticsFilter bounds refunds by creation time, both ends inclusive.
type StatisticsFilter struct {
	CafeID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

// StatusAggregate is one GROUP BY status row.
type StatusAggregate struct {
	Status        refund.Status
	Count         int64
	TotalOriginal int64
	TotalRefund   int64
	TotalFee      int64
}

type RefundAmounts struct {
	TotalOriginal int64   `json:"total_original"`
	TotalRefund   int64   `json:"total_refund"`
	TotalFee      int64   `json:"total_fee"`
	AverageRefund float64 `json:"average_refund"`
	AverageFee    float64 `json:"average_fee"`
}

type RefundStatistics struct {
	TotalRefunds int64                   `json:"total_refunds"`
	StatusCounts map[refund.Status]int64 `json:"status_counts"`
	Amounts      RefundAmounts           `json:"amounts"`
}
