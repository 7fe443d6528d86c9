package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// PendingMarker is stored under a key while its first request is in flight.
	PendingMarker = "processing"

	// IdempotencyPrefix namespaces idempotency keys.
	IdempotencyPrefix = "energyledger:idempotency:"

	defaultIdempotencyTTL = 24 * time.Hour
)

// claimScript claims KEYS[1] with ARGV[1] or returns the value that already
// holds it, in one step, so a key expiring mid-call cannot leave a request
// running unclaimed. A nil reply means the claim succeeded.
var claimScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
	return false
end
return redis.call('GET', KEYS[1])
`)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: IdempotencyPrefix,
	}
}

// CheckAndSet claims key with response, or with PendingMarker when response
// is nil. When the key is already claimed it returns (true, stored value).
// The claim is atomic across server instances.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}

	value := response
	if value == nil {
		value = []byte(PendingMarker)
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.prefix + key}, value, ttl.Milliseconds()).Text()
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, []byte(existing), nil
}

// Update replaces the value of key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release removes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
