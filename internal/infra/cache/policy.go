package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"refund-settlement-engine/internal/domain/cancellation"
	"refund-settlement-engine/internal/infra"
	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	policyKeyPrefix = "refund:policy:"
	// noPolicy caches the absence of a cafe policy so defaults are not re-queried.
	noPolicy = "none"
)

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.Wrapf(err, "redis ping %s", cfg.Addr)
	}
	return client, nil
}

// PolicyCache is a cache-aside decorator over a policy read store. Redis
// errors are logged and fall through to the store.
type PolicyCache struct {
	client redis.Cmdable
	next   queries.PolicyReadStore
	ttl    time.Duration
}

func NewPolicyCache(client redis.Cmdable, next queries.PolicyReadStore, ttl time.Duration) *PolicyCache {
	return &PolicyCache{client: client, next: next, ttl: ttl}
}

func policyKey(cafeID uuid.UUID) string {
	return policyKeyPrefix + cafeID.String()
}

func (c *PolicyCache) FindByCafeID(ctx context.Context, cafeID uuid.UUID) (*cancellation.Policy, error) {
	key := policyKey(cafeID)
	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if raw == noPolicy {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "cancellation policy not found (cached)", nil)
		}
		var p cancellation.Policy
		if jerr := json.Unmarshal([]byte(raw), &p); jerr == nil {
			return &p, nil
		}
		slog.Warn("dropping undecodable cached policy", "cafe_id", cafeID)
	case !errors.Is(err, redis.Nil):
		slog.Warn("policy cache read failed", "cafe_id", cafeID, "error", err.Error())
	}

	p, err := c.next.FindByCafeID(ctx, cafeID)
	switch {
	case err == nil:
		if body, jerr := json.Marshal(p); jerr == nil {
			c.store(ctx, key, string(body))
		}
	case infra.IsKind(err, infra.KindNotFound):
		c.store(ctx, key, noPolicy)
	}
	return p, err
}

func (c *PolicyCache) store(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.Warn("policy cache write failed", "key", key, "error", err.Error())
	}
}

func (c *PolicyCache) Invalidate(ctx context.Context, cafeID uuid.UUID) error {
	if err := c.client.Del(ctx, policyKey(cafeID)).Err(); err != nil {
		return errs.Wrapf(err, "invalidate policy %s", cafeID)
	}
	return nil
}

// NopInvalidator is used when no cache is configured.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, uuid.UUID) error { return nil }
