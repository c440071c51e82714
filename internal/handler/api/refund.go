package api

import (
	"net/http"

	reqdto "refund-settlement-engine/internal/handler/dto/request"
	resdto "refund-settlement-engine/internal/handler/dto/response"
	"refund-settlement-engine/internal/handler/httperr"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RefundHandler struct {
	cmds commands.RefundCommands
	q    queries.RefundQueries
}

func NewRefundHandler(cmds commands.RefundCommands, q queries.RefundQueries) *RefundHandler {
	return &RefundHandler{cmds: cmds, q: q}
}

// @Summary List refunds
// @Description Newest first, keyset paginated. Administrators only.
// @Tags refunds
// @Produce json
// @Security BearerAuth
// @Param status query string false "Refund status"
// @Param cafe_id query string false "Cafe ID"
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (1-200, default 20)"
// @Success 200 {object} resdto.RefundListResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/refunds [get]
func (h *RefundHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var q reqdto.ListRefundsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	filter, err := q.Filter()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	items, next, err := h.q.ListRefunds(c.Request.Context(), filter, q.GetCursor(), q.Limit, actor)
	if err != nil {
		if errs.Is(err, queries.ErrInvalidCursor) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
			return
		}
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundList(items, next))
}

// @Summary Refund statistics
// @Description Counts and amounts per status, optionally by cafe and creation period
// @Tags refunds
// @Produce json
// @Security BearerAuth
// @Param cafe_id query string false "Cafe ID"
// @Param start_date query string false "Inclusive start (RFC 3339 or YYYY-MM-DD)"
// @Param end_date query string false "Inclusive end (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {object} resdto.RefundStatisticsResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/refunds/statistics [get]
func (h *RefundHandler) Statistics(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var q reqdto.StatisticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	filter, err := q.Filter()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	stats, err := h.q.GetRefundStatistics(c.Request.Context(), filter, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundStatistics(stats))
}

// @Summary Get refund
// @Description Refund with its audit log, oldest entry first
// @Tags refunds
// @Produce json
// @Security BearerAuth
// @Param refundId path string true "Refund ID"
// @Success 200 {object} resdto.RefundDetailsResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/refunds/{refundId} [get]
func (h *RefundHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "refundId", "Invalid refund ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	view, err := h.q.GetRefund(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundDetailsView(view))
}

// @Summary Override refund status
// @Description Administrator override with an optional note
// @Tags refunds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param refundId path string true "Refund ID"
// @Param request body reqdto.UpdateRefundStatusRequest true "Target status"
// @Success 200 {object} resdto.RefundResultResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/refunds/{refundId}/status [put]
func (h *RefundHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathUUID(c, "refundId", "Invalid refund ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req reqdto.UpdateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	cmd, err := req.ToCommand(id, actor)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}

	result, err := h.cmds.UpdateStatus(c.Request.Context(), cmd)
	respondRefundResult(c, result, err)
}

// @Summary Retry refund
// @Description Re-run settlement of a FAILED refund. Administrators only.
// @Tags refunds
// @Produce json
// @Security BearerAuth
// @Param refundId path string true "Refund ID"
// @Success 200 {object} resdto.RefundResultResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/refunds/{refundId}/retry [post]
func (h *RefundHandler) Retry(c *gin.Context) {
	id, ok := pathUUID(c, "refundId", "Invalid refund ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.cmds.RetryRefund(c.Request.Context(), id, actor)
	respondRefundResult(c, result, err)
}
