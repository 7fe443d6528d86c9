package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
)

const accountCachePrefix = "account:"

// AccountCache is a read-through snapshot cache for accounts keyed by
// identity and ordered by account version. Cache failures degrade to misses;
// the store stays the source of truth.
type AccountCache struct {
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewAccountCache wraps cache. A nil cache yields a nil AccountCache, which is
// valid and caches nothing.
func NewAccountCache(cache Cache, ttl time.Duration, m *metrics.Metrics) *AccountCache {
	if cache == nil {
		return nil
	}

	if ttl <= 0 {
		ttl = AccountCacheTTL
	}

	return &AccountCache{cache: cache, ttl: ttl, metrics: m}
}

func (c *AccountCache) get(ctx context.Context, identity string) (*domain.Account, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, accountCachePrefix+identity)
	if err != nil || data == nil {
		c.observe("miss")
		return nil, false
	}

	var account domain.Account
	if err := json.Unmarshal(data, &account); err != nil {
		c.observe("corrupt")
		return nil, false
	}

	c.observe("hit")

	return &account, true
}

// set fills the cache with a snapshot unless a newer version is already
// cached. It reports false only when the cache could not be written.
func (c *AccountCache) set(ctx context.Context, account *domain.Account) bool {
	data, err := json.Marshal(account)
	if err != nil {
		c.observeWrite("error")
		return false
	}

	stored, err := c.cache.SetIfNewer(ctx, accountCachePrefix+account.Identity, account.Version, data, c.ttl)
	switch {
	case err != nil:
		c.observeWrite("error")
		return false
	case stored:
		c.observeWrite("stored")
	default:
		c.observeWrite("stale")
	}

	return true
}

// fill caches a snapshot read outside any transaction.
func (c *AccountCache) fill(ctx context.Context, account *domain.Account) {
	if c == nil {
		return
	}

	c.set(ctx, account)
}

// refresh reloads identities after a committed mutation and caches the
// committed versions, so a reader that loaded an older snapshot cannot fill
// it over them. If an identity cannot be reloaded or written, its key is
// dropped instead.
func (c *AccountCache) refresh(ctx context.Context, repo AccountRepository, identities ...string) {
	if c == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	for _, id := range identities {
		account, err := repo.GetByID(ctx, id)
		if err == nil && c.set(ctx, account) {
			continue
		}

		if err := c.cache.Delete(ctx, accountCachePrefix+id); err != nil {
			c.observeWrite("invalidate_failed")
		}
	}
}

func (c *AccountCache) observeWrite(result string) {
	if c.metrics != nil {
		c.metrics.CacheWrites.WithLabelValues(result).Inc()
	}
}

func (c *AccountCache) observe(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookup.WithLabelValues(result).Inc()
	}
}
