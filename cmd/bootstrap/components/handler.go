package components

import (
	"refund-settlement-engine/internal/handler"
	"refund-settlement-engine/internal/handler/api"
	"refund-settlement-engine/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCancellationHandler,
		api.NewPolicyHandler,
		api.NewRefundHandler,
		middleware.NewAuthMiddleware,
		func(c *api.CancellationHandler, p *api.PolicyHandler, r *api.RefundHandler) handler.Handlers {
			return handler.Handlers{Cancellation: c, Policy: p, Refund: r}
		},
	),
	fx.Invoke(handler.NewRouter),
)
