package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rafaelleal24/product-catalog/internal/adapters/http/middleware"
)

// Fixed window counter. Returns the hit count and the window's remaining ms.
var fixedWindowScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

type RateLimiter struct {
	rdb *goredis.Client
}

func NewRateLimiter(client *Client) middleware.RateLimiter {
	return &RateLimiter{rdb: client.rdb}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (middleware.Decision, error) {
	res, err := fixedWindowScript.Run(ctx, r.rdb, []string{"ratelimit:" + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return middleware.Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return middleware.Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = window
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return middleware.Decision{
		Allowed:    count <= limit,
		Limit:      limit,
		Remaining:  remaining,
		ResetAfter: ttl,
	}, nil
}
