package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "feedback:ratelimit:"

// redisWindow is a fixed one-minute window shared by every instance that
// points at the same Redis.
type redisWindow struct {
	client redis.Cmdable
}

// NewRedisRateLimiter creates a limiter whose counters live in Redis.
func NewRedisRateLimiter(client redis.Cmdable, maxPerMinute int) *RateLimiter {
	return newRateLimiter(maxPerMinute, &redisWindow{client: client})
}

func (rw *redisWindow) Allow(ctx context.Context, key string, limit int) (bool, time.Duration, error) {
	k := redisKeyPrefix + key
	n, err := rw.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := rw.client.Expire(ctx, k, time.Minute).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	if n <= int64(limit) {
		return true, 0, nil
	}

	ttl, err := rw.client.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		// -1: a previous EXPIRE was lost; without one the key would block forever.
		if err == nil && ttl == -1 {
			_ = rw.client.Expire(ctx, k, time.Minute).Err()
		}
		ttl = time.Minute
	}
	return false, ttl, nil
}
