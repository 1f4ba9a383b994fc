package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every API instance.
// Algorithm: INCR a per-window key and compare against max.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RedisLimiter{client: client, max: max, window: window, now: time.Now}
}

// WithClock replaces the wall clock used to pick the current window.
func (r *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	r.now = now
	return r
}

func (r *RedisLimiter) Name() string { return "redis" }

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	windowSeconds := int64(r.window / time.Second)
	now := r.now().Unix()
	bucket := now / windowSeconds
	redisKey := fmt.Sprintf("rl:%s:%d", key, bucket)

	cnt, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis incr: %w", err)
	}
	if cnt == 1 {
		// set expiration for the bucket
		_ = r.client.Expire(ctx, redisKey, r.window+time.Second).Err()
	}
	if cnt > int64(r.max) {
		remaining := (bucket+1)*windowSeconds - now
		return false, time.Duration(remaining) * time.Second, nil
	}
	return true, 0, nil
}
