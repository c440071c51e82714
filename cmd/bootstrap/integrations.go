package bootstrap

import (
	"context"
	"log/slog"

	"refund-settlement-engine/internal/infra/cache"
	"refund-settlement-engine/internal/infra/messaging"
	"refund-settlement-engine/internal/infra/metrics"
	"refund-settlement-engine/internal/infra/notify"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// IntegrationsModule wires the optional outer services. Each falls back to a
// local implementation when its address is not configured.
var IntegrationsModule = fx.Module("integrations",
	fx.Provide(
		NewRedisClient,
		NewPolicyStores,
		NewEventPublisher,
		NewEscalator,
		metrics.NewRegistry,
		func(r *metrics.Registry) commands.Metrics { return r },
	),
)

func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	slog.Info("policy cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.PolicyCacheTTL)
	return client, nil
}

type PolicyStoresIn struct {
	fx.In
	Raw    queries.PolicyReadStore `name:"rawPolicyStore"`
	Client *redis.Client
	Cfg    config.Config
}

type PolicyStoresOut struct {
	fx.Out
	Store       queries.PolicyReadStore
	Invalidator commands.PolicyCacheInvalidator
}

func NewPolicyStores(in PolicyStoresIn) PolicyStoresOut {
	if in.Client == nil {
		return PolicyStoresOut{Store: in.Raw, Invalidator: cache.NopInvalidator{}}
	}
	c := cache.NewPolicyCache(in.Client, in.Raw, in.Cfg.Redis.PolicyCacheTTL)
	return PolicyStoresOut{Store: c, Invalidator: c}
}

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) commands.EventPublisher {
	if cfg.RabbitMQ.URL == "" {
		return messaging.LogPublisher{}
	}
	p := messaging.NewRabbitPublisher(cfg.RabbitMQ)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return p.Close()
		},
	})
	slog.Info("refund events published to rabbitmq", "queue", cfg.RabbitMQ.RefundQueue)
	return p
}

func NewEscalator(cfg config.Config) commands.Escalator {
	if cfg.Mail.Host == "" {
		return notify.LogEscalator{}
	}
	slog.Info("refund escalations sent by mail", "to", cfg.Mail.EscalationTo)
	return notify.NewMailEscalator(cfg.Mail)
}
