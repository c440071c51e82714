package bootstrap

import (
	"refund-settlement-engine/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// EngineModule is everything the use cases need, without the HTTP layer.
var EngineModule = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	GatewayModule,
	IntegrationsModule,
	components.RepositoryModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	EngineModule,
	components.ClockModule,
	components.HandlerModule,
)
