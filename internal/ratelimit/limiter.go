package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

// fixedWindow increments KEYS[1] if it is under ARGV[1] and arms the
// expiry on first use. Returns {allowed, remaining, ttl}.
var fixedWindow = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if current < limit then
		local n = redis.call('INCR', key)
		if n == 1 then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - n, ttl}
	end
	return {0, 0, ttl}
`)

// Limiter counts login attempts per client key in Redis.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// AllowLogin consumes one login attempt for key (usually the client IP).
func (l *Limiter) AllowLogin(ctx context.Context, key string) (*Result, error) {
	return l.check(ctx, fmt.Sprintf("ratelimit:%s:login", key))
}

func (l *Limiter) check(ctx context.Context, key string) (*Result, error) {
	windowSecs := int(l.window.Seconds())
	if windowSecs < 1 {
		windowSecs = 1
	}

	vals, err := fixedWindow.Run(ctx, l.client, []string{key}, l.limit, windowSecs).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(vals) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	return &Result{
		Allowed:   vals[0] == 1,
		Remaining: int(vals[1]),
		ResetIn:   time.Duration(vals[2]) * time.Second,
		Limit:     l.limit,
	}, nil
}
