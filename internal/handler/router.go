package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/handler/api"
	"refund-settlement-engine/internal/handler/middleware"
	"refund-settlement-engine/internal/infra/metrics"
	"refund-settlement-engine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Cancellation *api.CancellationHandler
	Policy       *api.PolicyHandler
	Refund       *api.RefundHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, reg *metrics.Registry) {
	setupMiddleware(engine, cfg, reg)
	setupRoutes(engine, h, authMiddleware, reg)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, reg *metrics.Registry) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(reg.Middleware())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, reg *metrics.Registry) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(reg.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		staffOnly := authMiddleware.RequireRoleAtLeast(user.RoleOwner)
		adminOnly := authMiddleware.RequireRoleAtLeast(user.RoleAdmin)

		reservations := apiGroup.Group("/reservations/:id")
		addRoutes(reservations, []route{
			{Method: http.MethodGet, Path: "/cancellation/fee", Handler: h.Cancellation.CalculateFee},
			{Method: http.MethodGet, Path: "/cancellation/preview", Handler: h.Cancellation.Preview},
			{Method: http.MethodGet, Path: "/cancellation", Handler: h.Cancellation.Details},
			{Method: http.MethodPost, Path: "/cancel", Handler: h.Cancellation.Cancel},
		})

		policies := apiGroup.Group("/policies/cancellation")
		addRoutes(policies, []route{
			{Method: http.MethodGet, Path: "/:cafeId", Handler: h.Policy.Get},
			{Method: http.MethodPut, Path: "/:cafeId", Handler: h.Policy.Upsert, Mw: []gin.HandlerFunc{staffOnly}},
		})

		refunds := apiGroup.Group("/refunds")
		addRoutes(refunds, []route{
			{Method: http.MethodGet, Path: "", Handler: h.Refund.List, Mw: []gin.HandlerFunc{adminOnly}},
			{Method: http.MethodGet, Path: "/statistics", Handler: h.Refund.Statistics, Mw: []gin.HandlerFunc{staffOnly}},
			{Method: http.MethodGet, Path: "/:refundId", Handler: h.Refund.Get},
			{Method: http.MethodPut, Path: "/:refundId/status", Handler: h.Refund.UpdateStatus, Mw: []gin.HandlerFunc{adminOnly}},
			{Method: http.MethodPost, Path: "/:refundId/retry", Handler: h.Refund.Retry, Mw: []gin.HandlerFunc{adminOnly}},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
