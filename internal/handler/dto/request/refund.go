package request

import (
	"strings"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type UpdateRefundStatusRequest struct {
	Status    string  `json:"status" binding:"required"`
	AdminNote *string `json:"admin_note,omitempty" binding:"omitempty,max=1000"`
}

func (r UpdateRefundStatusRequest) ToCommand(refundID uuid.UUID, actor user.Actor) (commands.UpdateStatusRequest, error) {
	status, err := refund.ParseStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
	if err != nil {
		return commands.UpdateStatusRequest{}, err
	}
	var note *string
	if r.AdminNote != nil {
		if trimmed := strings.TrimSpace(*r.AdminNote); trimmed != "" {
			note = &trimmed
		}
	}
	return commands.UpdateStatusRequest{
		RefundID: refundID,
		Status:   status,
		Note:     note,
		Actor:    actor,
	}, nil
}

type ListRefundsQuery struct {
	Status string `form:"status"`
	CafeID string `form:"cafe_id"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q ListRefundsQuery) Filter() (queries.RefundFilter, error) {
	cafeID, err := optionalUUID(q.CafeID)
	if err != nil {
		return queries.RefundFilter{}, err
	}
	f := queries.RefundFilter{CafeID: cafeID}
	if q.Status != "" {
		st, err := refund.ParseStatus(strings.ToUpper(q.Status))
		if err != nil {
			return queries.RefundFilter{}, err
		}
		f.Status = &st
	}
	return f, nil
}

func (q ListRefundsQuery) GetCursor() *queries.Cursor {
	if q.Cursor == "" {
		return nil
	}
	return &queries.Cursor{After: q.Cursor}
}

// StatisticsQuery accepts RFC 3339 timestamps or plain dates. A plain end
// date covers the whole day.
type StatisticsQuery struct {
	CafeID    string `form:"cafe_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (q StatisticsQuery) Filter() (queries.StatisticsFilter, error) {
	cafeID, err := optionalUUID(q.CafeID)
	if err != nil {
		return queries.StatisticsFilter{}, err
	}
	f := queries.StatisticsFilter{CafeID: cafeID}
	if q.StartDate != "" {
		t, _, err := parseBound(q.StartDate)
		if err != nil {
			return queries.StatisticsFilter{}, err
		}
		f.From = &t
	}
	if q.EndDate != "" {
		t, dateOnly, err := parseBound(q.EndDate)
		if err != nil {
			return queries.StatisticsFilter{}, err
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &t
	}
	return f, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func optionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
