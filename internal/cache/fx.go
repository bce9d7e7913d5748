package cache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)

// NewStore uses redis when REDIS_ADDR is set, otherwise an in-process TTL map.
func NewStore(lc fx.Lifecycle, cfg config.Config, c clock.Clock, log *zap.Logger) Store {
	if cfg.RedisAddr == "" {
		return NewTTLStore(c)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				// Summaries are recomputed on a miss, so an unreachable cache only costs latency.
				log.Warn("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error { return client.Close() },
	})
	return NewRedisStore(client)
}
