package sidebar

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "sidebar:access"

// fillScript stores a snapshot only when the cached one is older. A fill
// computed from a read that raced a rebuild carries the older version and
// is dropped.
var fillScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// RedisCache keeps the snapshot in one hash: version and JSON data.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (*Snapshot, error) {
	raw, err := c.client.HGet(ctx, cacheKey, "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Fill caches snap unless a snapshot at the same or a newer version is
// already there. It reports whether snap was stored.
func (c *RedisCache) Fill(ctx context.Context, snap *Snapshot) (bool, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return false, err
	}
	stored, err := fillScript.Run(ctx, c.client, []string{cacheKey},
		strconv.FormatInt(snap.Version, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Set replaces the cached snapshot whatever its version.
func (c *RedisCache) Set(ctx context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey)
		pipe.HSet(ctx, cacheKey, "version", snap.Version, "data", raw)
		if c.ttl > 0 {
			pipe.PExpire(ctx, cacheKey, c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKey).Err()
}
