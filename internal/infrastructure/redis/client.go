// Package redis dials the Redis instance backing the unread-count cache and
// the reminder dedup guard. Redis is optional for this service: when it is
// disabled the callers run uncached.
package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/homeboard/backend/internal/config"
)

const pingTimeout = 5 * time.Second

// NewClient parses the configured URL, applies the password/db overrides and
// fails fast when the server is unreachable — a half-working cache is worse
// than no cache.
func NewClient(cfg config.RedisConfig) (*redislib.Client, error) {
	opts, err := redislib.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redislib.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
