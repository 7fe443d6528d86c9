package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
)

// AccountRepository defines data access for participant accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, identity string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, identity string) (*domain.Account, error)
	// GetByIDsForUpdate locks the existing accounts among identities.
	// Missing identities are omitted from the result.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, identities []string) ([]*domain.Account, error)
	UpdateEnergyBalance(ctx context.Context, tx Transaction, identity string, balance uint64, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// ListingRepository defines data access for energy listings.
type ListingRepository interface {
	Create(ctx context.Context, tx Transaction, listing *domain.Listing) error
}

// TradeRepository defines data access for the append-only trade log.
type TradeRepository interface {
	// Create appends trade and assigns its Sequence.
	Create(ctx context.Context, tx Transaction, trade *domain.Trade) error
	GetByID(ctx context.Context, id string) (*domain.Trade, error)
	List(ctx context.Context) ([]*domain.Trade, error)
	ListByParticipant(ctx context.Context, identity string, limit, offset int) ([]*domain.Trade, error)
}

// WalletRepository defines data access for value wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, identity string) (*domain.Wallet, error)
	// GetByIDsForUpdate locks the existing wallets among identities.
	// Missing identities are omitted from the result.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, identities []string) ([]*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, identity string, balance decimal.Decimal, updatedAt time.Time) error
}

// EntryRepository defines data access for wallet entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByIdentity(ctx context.Context, identity string, limit, offset int) ([]*domain.Entry, error)
	GetByTrade(ctx context.Context, tradeID string) ([]*domain.Entry, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	// Create stores event and assigns its Sequence.
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	// GetUnpublished returns unpublished events in Sequence order.
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// LedgerTotals aggregates the whole ledger for consistency checks.
// Sums are decimals because they may exceed 64 bits.
type LedgerTotals struct {
	EnergyBalance   decimal.Decimal
	ListedEnergy    decimal.Decimal
	WalletBalance   decimal.Decimal
	EntryAmount     decimal.Decimal
	SettlementNet   decimal.Decimal
	TradeCount      int64
	MaxSequence     int64
	AccountCount    int64
	UnsetWithEnergy int64
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Totals(ctx context.Context) (*LedgerTotals, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache stores versioned snapshots. SetIfNewer never replaces a value with
// one of a lower version and reports whether value was stored.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetIfNewer(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request may be retried.
	Release(ctx context.Context, key string) error
}
