package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ncecere/copilot_usage_dashboard/internal/config"
)

// New constructs a Redis client from the cache configuration.
func New(cfg config.CacheConfig) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// ParseURL rejects bare host:port addresses, so treat the value as one.
		opts = &redis.Options{
			Addr: cfg.RedisURL,
		}
	}

	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}

	return redis.NewClient(opts)
}

// Ping verifies connectivity to Redis with a short timeout.
func Ping(ctx context.Context, client *redis.Client) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(timeoutCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
