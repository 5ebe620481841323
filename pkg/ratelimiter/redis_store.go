package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript mirrors MemoryStore.ConsumeTokens atomically on the server.
// KEYS[1] bucket; ARGV capacity, refill rate, interval ms, now ms, tokens.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local requested = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local intervals = math.floor((now - ts) / interval)
local cap_intervals = math.floor(capacity / rate) + 1
if intervals > cap_intervals then intervals = cap_intervals end
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  ts = now
end

local remaining
if tokens < requested then
  remaining = tokens - requested
else
  tokens = tokens - requested
  remaining = tokens
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], (math.floor(capacity / rate) + 1) * interval * 2)
return {remaining, ts + interval}
`)

// RedisStore shares buckets between replicas.
type RedisStore struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		s.now().UnixMilli(),
		tokens,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply of length %d", ErrStoreUnavailable, len(res))
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	client, ok := s.client.(redis.Cmdable)
	if !ok {
		return fmt.Errorf("%w: client cannot delete keys", ErrStoreUnavailable)
	}
	if err := client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
