// Package cache provides the Redis-backed completion cache consulted before
// provider calls.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forkcast/v1/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CompletionCache stores raw completion text keyed by a content hash of the
// provider call. Entries expire on TTL; the cache is never authoritative.
type CompletionCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCompletionCache connects to Redis and verifies the connection.
func NewCompletionCache(cfg config.RedisConfig, logger *zap.Logger) (*CompletionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("completion cache connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.Database))

	return &CompletionCache{client: client, logger: logger}, nil
}

// Get returns the cached completion for a key, with a hit flag.
func (c *CompletionCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores a completion under the key for the given TTL.
func (c *CompletionCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the Redis connection.
func (c *CompletionCache) Close() error {
	return c.client.Close()
}
