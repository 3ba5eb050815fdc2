package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// ReminderGuard deduplicates deadline reminders: at most one reminder per
// task per calendar day, enforced with SET NX and a TTL so stale keys expire
// on their own.
type ReminderGuard struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewReminderGuard creates a Redis-backed reminder dedup guard.
func NewReminderGuard(client *redislib.Client, ttl time.Duration) *ReminderGuard {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &ReminderGuard{
		client: client,
		prefix: "reminder:",
		ttl:    ttl,
	}
}

// FirstToday claims the reminder slot for the task on the given day. It
// returns true only for the first caller; repeats on the same day get false.
func (g *ReminderGuard) FirstToday(ctx context.Context, taskID string, day time.Time) (bool, error) {
	key := fmt.Sprintf("%s%s:%s", g.prefix, taskID, day.Format("2006-01-02"))
	return g.client.SetNX(ctx, key, 1, g.ttl).Result()
}
