package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/energyledger/internal/adapter/repository/memory"
	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
	"github.com/iho/energyledger/internal/usecase/mocks"
)

// versionedCache is an in-process usecase.Cache with the same ordering rule
// as the Redis cache: a lower version never replaces a higher one.
type versionedCache struct {
	mu      sync.Mutex
	entries map[string]versionedEntry
}

type versionedEntry struct {
	version int64
	value   []byte
}

func newVersionedCache() *versionedCache {
	return &versionedCache{entries: make(map[string]versionedEntry)}
}

func (c *versionedCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return e.value, nil
}

func (c *versionedCache) SetIfNewer(_ context.Context, key string, version int64, value []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.version > version {
		return false, nil
	}
	c.entries[key] = versionedEntry{version: version, value: value}
	return true, nil
}

func (c *versionedCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// interleavingAccountRepo runs afterRead once, between a store read and the
// caller's next step.
type interleavingAccountRepo struct {
	usecase.AccountRepository
	afterRead func()
}

func (r *interleavingAccountRepo) GetByID(ctx context.Context, identity string) (*domain.Account, error) {
	acc, err := r.AccountRepository.GetByID(ctx, identity)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return acc, err
}

func TestLedgerUseCase_GetAccountUnknownIsUnset(t *testing.T) {
	l := newTestLedger(t)

	acc, err := l.ledger.GetAccount(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", acc.Identity)
	assert.Equal(t, domain.RoleUnset, acc.Role)
	assert.Zero(t, acc.EnergyBalance)
}

func TestLedgerUseCase_GetAccountReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	l := newTestLedgerWithCache(t, cache)

	// registration caches the committed account
	cache.EXPECT().SetIfNewer(gomock.Any(), "account:alice", gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	l.prosumer(t, "alice", 0)

	var stored []byte
	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), "account:alice").Return(nil, nil),
		cache.EXPECT().SetIfNewer(gomock.Any(), "account:alice", gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ int64, value []byte, _ time.Duration) (bool, error) {
				stored = value
				return true, nil
			},
		),
	)

	acc, err := l.ledger.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProsumer, acc.Role)

	var cached domain.Account
	require.NoError(t, json.Unmarshal(stored, &cached))
	assert.Equal(t, domain.RoleProsumer, cached.Role)
	assert.Equal(t, acc.Version, cached.Version)

	cache.EXPECT().Get(gomock.Any(), "account:alice").Return(stored, nil)

	acc, err = l.ledger.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Identity)

	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.CacheLookup.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.CacheLookup.WithLabelValues("miss")))
}

func TestLedgerUseCase_CacheFailureFallsBackToStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	l := newTestLedgerWithCache(t, cache)

	cache.EXPECT().SetIfNewer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, errors.New("redis down")).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), "account:alice").Return(errors.New("redis down")).Times(2)
	l.prosumer(t, "alice", 5)

	// both committed writes failed to reach the cache and are counted
	assert.Equal(t, 2.0, testutil.ToFloat64(l.metrics.CacheWrites.WithLabelValues("invalidate_failed")))

	cache.EXPECT().Get(gomock.Any(), "account:alice").Return(nil, errors.New("redis down"))

	acc, err := l.ledger.GetAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), acc.EnergyBalance)
	assert.Equal(t, 3.0, testutil.ToFloat64(l.metrics.CacheWrites.WithLabelValues("error")))
}

func TestLedgerUseCase_FailedRefreshDropsCachedAccount(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	l := newTestLedgerWithCache(t, cache)

	cache.EXPECT().SetIfNewer(gomock.Any(), "account:alice", gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	l.prosumer(t, "alice", 0)

	gomock.InOrder(
		cache.EXPECT().SetIfNewer(gomock.Any(), "account:alice", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(false, errors.New("timeout")),
		cache.EXPECT().Delete(gomock.Any(), "account:alice").Return(nil),
	)

	_, err := l.listing.AddEnergy(ctx, "alice", 7)
	require.NoError(t, err)
	assert.Zero(t, testutil.ToFloat64(l.metrics.CacheWrites.WithLabelValues("invalidate_failed")))
}

func TestLedgerUseCase_CommittedWriteWinsOverConcurrentFill(t *testing.T) {
	ctx := context.Background()
	cache := newVersionedCache()
	l := newTestLedgerWithCache(t, cache)

	l.prosumer(t, "X", 0)

	// the entry expired, so the next read goes to the store
	require.NoError(t, cache.Delete(ctx, "account:X"))

	// a reader loads X, then addEnergy commits before the reader fills the cache
	reader := usecase.NewLedgerUseCase(
		&interleavingAccountRepo{
			AccountRepository: memory.NewAccountRepository(l.store),
			afterRead: func() {
				_, err := l.listing.AddEnergy(ctx, "X", 100)
				require.NoError(t, err)
			},
		},
		nil, nil,
		usecase.NewAccountCache(cache, 0, l.metrics),
	)

	acc, err := reader.GetAccount(ctx, "X")
	require.NoError(t, err)
	assert.Zero(t, acc.EnergyBalance, "the read itself happened before the commit")

	acc, err = l.ledger.GetAccount(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), acc.EnergyBalance)

	acc, err = reader.GetAccount(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), acc.EnergyBalance)

	assert.Equal(t, 1.0, testutil.ToFloat64(l.metrics.CacheWrites.WithLabelValues("stale")))
}

func TestLedgerUseCase_SettlementRefreshesBothParties(t *testing.T) {
	ctx := context.Background()
	cache := newVersionedCache()
	l := newTestLedgerWithCache(t, cache)

	l.prosumer(t, "X", 10)
	l.consumer(t, "Y", 100)

	// warm the cache with pre-trade snapshots
	_, err := l.ledger.GetAccount(ctx, "X")
	require.NoError(t, err)
	_, err = l.ledger.GetAccount(ctx, "Y")
	require.NoError(t, err)

	_, err = l.settlement.BuyEnergy(ctx, usecase.BuyEnergyInput{
		Buyer: "Y", Seller: "X", Amount: 4, PricePerUnit: 2, PaymentValue: 8,
	})
	require.NoError(t, err)

	seller, err := l.ledger.GetAccount(ctx, "X")
	require.NoError(t, err)
	buyer, err := l.ledger.GetAccount(ctx, "Y")
	require.NoError(t, err)

	assert.Equal(t, uint64(6), seller.EnergyBalance)
	assert.Equal(t, uint64(4), buyer.EnergyBalance)
}
