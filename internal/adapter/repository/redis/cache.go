package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachePrefix namespaces account cache keys.
const CachePrefix = "energyledger:cache:"

// Each cache key is a hash of {version, value}. The script writes only when
// no entry exists or the cached version is not newer than ARGV[1].
var setIfNewerScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'value', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: CachePrefix,
	}
}

// Get retrieves a value by key. A missing key yields (nil, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.HGet(ctx, c.prefix+key, "value").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

// SetIfNewer stores value under key unless a higher version is cached.
// Equal versions overwrite and extend the TTL.
func (c *Cache) SetIfNewer(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error) {
	stored, err := setIfNewerScript.Run(ctx, c.client,
		[]string{c.prefix + key}, version, value, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}

	return stored == 1, nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
