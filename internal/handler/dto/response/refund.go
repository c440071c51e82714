package response

import (
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RefundResultResponse struct {
	RefundID       uuid.UUID     `json:"refundId"`
	ReservationID  uuid.UUID     `json:"reservationId"`
	OriginalAmount int64         `json:"originalAmount"`
	RefundAmount   int64         `json:"refundAmount"`
	FeeAmount      int64         `json:"feeAmount"`
	Status         refund.Status `json:"status"`
	RetryCount     int           `json:"retryCount"`
	TransactionID  *string       `json:"transactionId,omitempty"`
	FailureReason  *string       `json:"failureReason,omitempty"`
}

type FeeResponse struct {
	ReservationID     uuid.UUID         `json:"reservationId"`
	OriginalAmount    int64             `json:"originalAmount"`
	RefundAmount      int64             `json:"refundAmount"`
	FeeAmount         int64             `json:"feeAmount"`
	FeeRatePercent    float64           `json:"feeRate"`
	RefundRatePercent float64           `json:"refundRate"`
	HoursBeforeStart  int               `json:"hoursBeforeStart"`
	Tier              cancellation.Tier `json:"tier"`
	CanCancel         bool              `json:"canCancel"`
	Reason            *string           `json:"reason,omitempty"`
}

type CanCancelResponse struct {
	CanCancel   bool         `json:"canCancel"`
	Reason      *string      `json:"reason,omitempty"`
	Calculation *FeeResponse `json:"calculation,omitempty"`
}

type PolicyResponse struct {
	CafeID                uuid.UUID `json:"cafeId"`
	IsDefault             bool      `json:"isDefault"`
	FreeCancellationHours int       `json:"freeCancellationHours"`
	EarlyRefundRate       float64   `json:"earlyRefundRate"`
	StandardRefundRate    float64   `json:"standardRefundRate"`
	LateRefundRate        float64   `json:"lateRefundRate"`
	NoRefundBeforeHours   int       `json:"noRefundBeforeHours"`
	Description           string    `json:"description"`
}

type ReservationSummaryResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CafeID             uuid.UUID  `json:"cafeId"`
	SeatID             uuid.UUID  `json:"seatId"`
	UserID             uuid.UUID  `json:"userId"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            time.Time  `json:"endTime"`
	TotalPrice         int64      `json:"totalPrice"`
	Status             string     `json:"status"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancellationNote   *string    `json:"cancellationNote,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
}

type CancellationDetailsResponse struct {
	Reservation ReservationSummaryResponse `json:"reservation"`
	Policy      PolicyResponse             `json:"policy"`
	CanCancel   bool                       `json:"canCancel"`
	Reason      *string                    `json:"reason,omitempty"`
	Quote       *FeeResponse               `json:"quote,omitempty"`
	Refund      *RefundResponse            `json:"refund,omitempty"`
}

type RefundResponse struct {
	ID               uuid.UUID     `json:"id"`
	ReservationID    uuid.UUID     `json:"reservationId"`
	UserID           uuid.UUID     `json:"userId"`
	CafeID           uuid.UUID     `json:"cafeId"`
	OriginalAmount   int64         `json:"originalAmount"`
	RefundAmount     int64         `json:"refundAmount"`
	FeeAmount        int64         `json:"feeAmount"`
	AppliedFeeRate   float64       `json:"appliedFeeRate"`
	HoursBeforeStart int           `json:"hoursBeforeStart"`
	RefundMethod     string        `json:"refundMethod"`
	RefundReason     string        `json:"refundReason"`
	Status           refund.Status `json:"status"`
	RetryCount       int           `json:"retryCount"`
	TransactionID    *string       `json:"transactionId,omitempty"`
	FailureReason    *string       `json:"failureReason,omitempty"`
	AdminNote        *string       `json:"adminNote,omitempty"`
	ProcessedBy      *string       `json:"processedBy,omitempty"`
	ProcessedAt      *time.Time    `json:"processedAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type RefundLogResponse struct {
	PreviousStatus *refund.Status `json:"previousStatus"`
	NewStatus      refund.Status  `json:"newStatus"`
	Reason         string         `json:"reason"`
	Actor          string         `json:"actor"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type RefundDetailsResponse struct {
	Refund RefundResponse       `json:"refund"`
	Logs   []*RefundLogResponse `json:"logs"`
}

type RefundListItemResponse struct {
	ID            uuid.UUID     `json:"id"`
	ReservationID uuid.UUID     `json:"reservationId"`
	CafeID        uuid.UUID     `json:"cafeId"`
	RefundAmount  int64         `json:"refundAmount"`
	FeeAmount     int64         `json:"feeAmount"`
	Status        refund.Status `json:"status"`
	RetryCount    int           `json:"retryCount"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type RefundListResponse struct {
	Items      []*RefundListItemResponse `json:"items"`
	NextCursor *string                   `json:"nextCursor,omitempty"`
}

type RefundAmountsResponse struct {
	TotalOriginal int64   `json:"totalOriginal"`
	TotalRefund   int64   `json:"totalRefund"`
	TotalFee      int64   `json:"totalFee"`
	AverageRefund float64 `json:"averageRefund"`
	AverageFee    float64 `json:"averageFee"`
}

type RefundStatisticsResponse struct {
	TotalRefunds int64                   `json:"totalRefunds"`
	StatusCounts map[refund.Status]int64 `json:"statusCounts"`
	Amounts      RefundAmountsResponse   `json:"amounts"`
}

// copyInto maps a view onto its response type field by field. The shapes are
// kept in lockstep, so a failure is a programming error.
func copyInto[T any](from any) *T {
	out := new(T)
	if err := copier.Copy(out, from); err != nil {
		panic("response mapping: " + err.Error())
	}
	return out
}

func FromRefundResult(r *commands.RefundResult) *RefundResultResponse {
	return copyInto[RefundResultResponse](r)
}

func FromFeeView(v *queries.FeeView) *FeeResponse {
	return copyInto[FeeResponse](v)
}

func FromCanCancelView(v *queries.CanCancelView) *CanCancelResponse {
	resp := &CanCancelResponse{CanCancel: v.CanCancel, Reason: v.Reason}
	if v.Calculation != nil {
		resp.Calculation = FromFeeView(v.Calculation)
	}
	return resp
}

func FromPolicyView(v *queries.PolicyView) *PolicyResponse {
	return copyInto[PolicyResponse](v)
}

func FromCancellationDetailsView(v *queries.CancellationDetailsView) *CancellationDetailsResponse {
	resp := &CancellationDetailsResponse{
		Reservation: *copyInto[ReservationSummaryResponse](&v.Reservation),
		Policy:      *FromPolicyView(&v.Policy),
		CanCancel:   v.CanCancel,
		Reason:      v.Reason,
	}
	if v.Quote != nil {
		resp.Quote = FromFeeView(v.Quote)
	}
	if v.Refund != nil {
		resp.Refund = FromRefundView(v.Refund)
	}
	return resp
}

func FromRefundView(v *queries.RefundView) *RefundResponse {
	return copyInto[RefundResponse](v)
}

func FromRefundDetailsView(v *queries.RefundDetailsView) *RefundDetailsResponse {
	logs := make([]*RefundLogResponse, len(v.Logs))
	for i, l := range v.Logs {
		logs[i] = copyInto[RefundLogResponse](l)
	}
	return &RefundDetailsResponse{
		Refund: *FromRefundView(&v.RefundView),
		Logs:   logs,
	}
}

func FromRefundList(items []*queries.RefundListItem, next *queries.Cursor) *RefundListResponse {
	resp := &RefundListResponse{Items: make([]*RefundListItemResponse, len(items))}
	for i, it := range items {
		resp.Items[i] = copyInto[RefundListItemResponse](it)
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}

func FromRefundStatistics(s *queries.RefundStatistics) *RefundStatisticsResponse {
	return &RefundStatisticsResponse{
		TotalRefunds: s.TotalRefunds,
		StatusCounts: s.StatusCounts,
		Amounts:      *copyInto[RefundAmountsResponse](&s.Amounts),
	}
}
