package cache

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that Redis implements ports.CacheInvalidator.
var _ ports.CacheInvalidator = (*Redis)(nil)

// Redis invalidates keys in a shared Redis cache so multi-instance
// deployments converge after a mutation. Deletion failures are logged and
// swallowed: a stale cache entry expires on its own, while failing the
// mutation would not undo it.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis creates a Redis-backed invalidator.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Redis{client: client, logger: logger}
}

// Invalidate deletes the given keys.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed",
			slog.String("operation", "Redis.Invalidate"),
			slog.Any("keys", keys),
			slog.Any("error", err),
		)
	}
}

// Ping verifies connectivity. Wired into the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
