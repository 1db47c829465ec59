package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/socialhub-api/internal/config"
)

const defaultPrefix = "socialhub:rl:"

var fixedWindowScript = goredis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
  redis.call("PEXPIRE", key, window_ms)
end

local ttl = redis.call("PTTL", key)
if ttl < 0 then
  ttl = window_ms
end

if current > limit then
  return {0, ttl}
end
return {1, ttl}
`)

var errUnexpectedReply = errors.New("unexpected redis response")

// NewClient builds a go-redis client from config.
func NewClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

// Limiter is a fixed-window counter shared by every API instance.
type Limiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewLimiter(client *goredis.Client, limit int, window time.Duration, prefix string) *Limiter {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Limiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow counts one hit against key and reports whether it is within the
// window's limit, plus how long until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	windowMS := l.window.Milliseconds()
	if windowMS <= 0 {
		return false, 0, errors.New("invalid rate limit window")
	}
	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.limit, windowMS).Result()
	if err != nil {
		return false, 0, err
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return false, 0, errUnexpectedReply
	}
	allowed, ok := vals[0].(int64)
	if !ok {
		return false, 0, errUnexpectedReply
	}
	ttlMS, ok := vals[1].(int64)
	if !ok {
		return false, 0, errUnexpectedReply
	}
	retryAfter := time.Duration(ttlMS) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = 0
	}
	return allowed == 1, retryAfter, nil
}
