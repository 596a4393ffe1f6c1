package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limit is a sliding-window quota
type Limit struct {
	Limit  int           // Maximum requests per window
	Window time.Duration // Window length
}

// RateLimiter implements sliding window rate limiting on a sorted set
// per key. Redis being disabled allows everything.
type RateLimiter struct {
	client *Client
	prefix string
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix}
}

// slidingWindow trims expired members, then admits the request if the
// window still has room. Returns {allowed, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	end
	return {0, 0}
`)

// Allow records a request for key and reports whether it fits the quota.
// Returns (allowed, remaining, error).
func (r *RateLimiter) Allow(ctx context.Context, key string, l Limit) (bool, int, error) {
	if !r.client.Enabled() {
		return true, l.Limit, nil
	}

	fullKey := fmt.Sprintf("%s:ratelimit:%s", r.prefix, key)
	now := time.Now().UnixMilli()

	result, err := slidingWindow.Run(ctx, r.client.rdb, []string{fullKey},
		now,
		now-l.Window.Milliseconds(),
		l.Limit,
		l.Window.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	return result[0] == 1, int(result[1]), nil
}

// Wait blocks until key is admitted or ctx is cancelled
func (r *RateLimiter) Wait(ctx context.Context, key string, l Limit) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		allowed, _, err := r.Allow(ctx, key, l)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
