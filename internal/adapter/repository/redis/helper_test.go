package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedis starts a miniredis server and a client that are both closed
// when the test ends.
func newTestRedis(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// cacheKey and idempotencyKey give the raw server-side key for assertions
// against miniredis.
func cacheKey(key string) string { return CachePrefix + key }

func idempotencyKey(key string) string { return IdempotencyPrefix + key }
