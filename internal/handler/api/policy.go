package api

import (
	"net/http"

	reqdto "refund-settlement-engine/internal/handler/dto/request"
	resdto "refund-settlement-engine/internal/handler/dto/response"
	"refund-settlement-engine/internal/handler/httperr"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	cmds commands.PolicyCommands
	q    queries.PolicyQueries
}

func NewPolicyHandler(cmds commands.PolicyCommands, q queries.PolicyQueries) *PolicyHandler {
	return &PolicyHandler{cmds: cmds, q: q}
}

// @Summary Get cancellation policy
// @Description Stored policy of a cafe, or the default policy when none is stored
// @Tags policies
// @Produce json
// @Security BearerAuth
// @Param cafeId path string true "Cafe ID"
// @Success 200 {object} resdto.PolicyResponse
// @Failure 400 {object} httperr.Response
// @Router /api/policies/cancellation/{cafeId} [get]
func (h *PolicyHandler) Get(c *gin.Context) {
	cafeID, ok := pathUUID(c, "cafeId", "Invalid cafe ID format")
	if !ok {
		return
	}

	view, err := h.q.GetPolicy(c.Request.Context(), cafeID)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPolicyView(view))
}

// @Summary Upsert cancellation policy
// @Description Replace the cancellation policy of a cafe
// @Tags policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cafeId path string true "Cafe ID"
// @Param request body reqdto.UpsertPolicyRequest true "Policy"
// @Success 200 {object} resdto.PolicyResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/policies/cancellation/{cafeId} [put]
func (h *PolicyHandler) Upsert(c *gin.Context) {
	cafeID, ok := pathUUID(c, "cafeId", "Invalid cafe ID format")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req reqdto.UpsertPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	if _, err := h.cmds.Upsert(c.Request.Context(), req.ToCommand(cafeID, actor)); err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	view, err := h.q.GetPolicy(c.Request.Context(), cafeID)
	if err != nil {
		httperr.AbortWithEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPolicyView(view))
}
