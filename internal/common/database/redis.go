// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loan-approval/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const purgeBatch = 500

// RedisClient wraps the Redis client used for the verdict cache.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// PurgeStaleVerdicts deletes cached verdicts under prefix that were produced
// by an artifact set other than digest and returns how many were removed.
func (c *RedisClient) PurgeStaleVerdicts(ctx context.Context, prefix, digest string) (int, error) {
	keep := prefix + ":" + digest + ":"

	var stale []string
	iter := c.Client.Scan(ctx, 0, prefix+":*", purgeBatch).Iterator()
	for iter.Next(ctx) {
		if key := iter.Val(); !strings.HasPrefix(key, keep) {
			stale = append(stale, key)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan failed: %w", err)
	}

	removed := 0
	for start := 0; start < len(stale); start += purgeBatch {
		end := min(start+purgeBatch, len(stale))
		n, err := c.Client.Del(ctx, stale[start:end]...).Result()
		if err != nil {
			return removed, fmt.Errorf("redis delete failed: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}
