package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// UnreadCache keeps per-recipient unread-notification counts in Redis so the
// badge endpoint does not hit the primary store on every poll. The cache is
// advisory: a miss falls through to the repository count.
type UnreadCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewUnreadCache creates a Redis-backed unread counter cache.
func NewUnreadCache(client *redislib.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UnreadCache{
		client: client,
		prefix: "unread:",
		ttl:    ttl,
	}
}

// Get returns the cached count and whether a cached value existed.
func (c *UnreadCache) Get(ctx context.Context, recipient string) (int, bool, error) {
	result, err := c.client.Get(ctx, c.key(recipient)).Result()
	if err != nil {
		if err == redislib.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	count, err := strconv.Atoi(result)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// Set stores the count with the configured TTL.
func (c *UnreadCache) Set(ctx context.Context, recipient string, count int) error {
	return c.client.Set(ctx, c.key(recipient), count, c.ttl).Err()
}

// Invalidate drops the cached count so the next read recomputes it.
func (c *UnreadCache) Invalidate(ctx context.Context, recipient string) error {
	return c.client.Del(ctx, c.key(recipient)).Err()
}

func (c *UnreadCache) key(recipient string) string {
	return fmt.Sprintf("%s%s", c.prefix, recipient)
}
