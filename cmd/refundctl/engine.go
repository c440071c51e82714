package main

import (
	"context"

	"refund-settlement-engine/cmd/bootstrap"
	"refund-settlement-engine/cmd/bootstrap/components"
	"refund-settlement-engine/internal/domain/user"
	"refund-settlement-engine/internal/handler/middleware"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"go.uber.org/fx"
)

type engine struct {
	refunds       commands.RefundCommands
	refundQueries queries.RefundQueries
	cancellation  queries.CancellationQueries
}

// withEngine starts the same use-case graph as the server, without HTTP, and
// runs fn against it.
func withEngine(ctx context.Context, fn func(ctx context.Context, e engine) error) error {
	var e engine
	app := fx.New(
		bootstrap.EngineModule,
		components.ClockModule,
		fx.NopLogger,
		fx.Invoke(func(cfg config.Config) { middleware.NewLogger(cfg.Log) }),
		fx.Populate(&e.refunds, &e.refundQueries, &e.cancellation),
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = app.Stop(context.Background()) }()

	return fn(ctx, e)
}

func (g *globalFlags) adminActor() (user.Actor, error) {
	id, err := g.actorID()
	if err != nil {
		return user.Actor{}, err
	}
	return user.NewActor(id, user.RoleAdmin), nil
}
