package api

import (
	"net/http"

	"refund-settlement-engine/internal/domain/user"
	reqdto "refund-settlement-engine/internal/handler/dto/request"
	resdto "refund-settlement-engine/internal/handler/dto/response"
	"refund-settlement-engine/internal/handler/httperr"
	"refund-settlement-engine/internal/handler/middleware"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errNoActor = errs.New("authenticated actor missing from context")

type CancellationHandler struct {
	cmds commands.RefundCommands
	q    queries.CancellationQueries
}

func NewCancellationHandler(cmds commands.RefundCommands, q queries.CancellationQueries) *CancellationHandler {
	return &CancellationHandler{cmds: cmds, q: q}
}

// @Summary Calculate cancellation fee
// @Description Quote the refund and fee for cancelling a reservation now
// @Tags cancellation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.FeeResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/cancellation/fee [get]
func (h *CancellationHandler) CalculateFee(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid reservation ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	view, err := h.q.CalculateFee(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromFeeView(view))
}

// @Summary Cancellation preview
// @Description Report whether the reservation can be cancelled and the quote if so
// @Tags cancellation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.CanCancelResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/cancellation/preview [get]
func (h *CancellationHandler) Preview(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid reservation ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	view, err := h.q.CanCancel(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCanCancelView(view))
}

// @Summary Cancellation details
// @Description Reservation, effective policy, current quote and existing refund
// @Tags cancellation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.CancellationDetailsResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/cancellation [get]
func (h *CancellationHandler) Details(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid reservation ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	view, err := h.q.GetCancellationDetails(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCancellationDetailsView(view))
}

// @Summary Cancel reservation
// @Description Cancel a reservation and settle its refund. A gateway failure
// @Description answers 502 with the FAILED refund in detail; the reservation stays cancelled.
// @Tags cancellation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CancelReservationRequest true "Cancel request"
// @Success 200 {object} resdto.RefundResultResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/reservations/{id}/cancel [post]
func (h *CancellationHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid reservation ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req reqdto.CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	cmd, err := req.ToCommand(id, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}

	result, err := h.cmds.Cancel(c.Request.Context(), cmd)
	respondRefundResult(c, result, err)
}

// respondRefundResult answers a settlement command. Gateway failures still
// carry the persisted refund so the caller can retry it.
func respondRefundResult(c *gin.Context, result *commands.RefundResult, err error) {
	if err != nil {
		var detail any
		if result != nil {
			detail = resdto.FromRefundResult(result)
		}
		httperr.AbortWithEngineError(c, err, detail)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundResult(result))
}

func pathUUID(c *gin.Context, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, msg, nil)
		return uuid.Nil, false
	}
	return id, true
}

func actorFrom(c *gin.Context) (user.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return actor, false
	}
	return actor, true
}
