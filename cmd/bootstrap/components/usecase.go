package components

import (
	"refund-settlement-engine/internal/pkg/clock"
	"refund-settlement-engine/internal/usecase"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

// ClockModule is separate so tests can supply a mock clock instead.
var ClockModule = fx.Provide(clock.NewRealClock)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewRefundCommands,
		commands.NewPolicyCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCancellationQueries,
		queries.NewPolicyQueries,
		queries.NewRefundQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
