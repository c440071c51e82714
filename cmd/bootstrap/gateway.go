package bootstrap

import (
	"log/slog"

	"refund-settlement-engine/internal/infra/gateway"
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewGatewayClient,
	),
)

func NewGatewayClient(cfg config.Config, clk clock.Clock) (commands.GatewayClient, error) {
	switch cfg.Gateway.Driver {
	case config.DriverStripe:
		client, err := gateway.NewStripeClient(cfg.Gateway)
		if err != nil {
			return nil, err
		}
		slog.Info("payment gateway: stripe")
		return client, nil
	case config.DriverSimulated, "":
		slog.Info("payment gateway: simulated",
			"failure_rate", cfg.Gateway.FailureRate,
			"latency", cfg.Gateway.Latency)
		return gateway.NewSimulatedClient(cfg.Gateway, clk), nil
	default:
		return nil, errs.Newf("unknown GATEWAY_DRIVER %q", cfg.Gateway.Driver)
	}
}
