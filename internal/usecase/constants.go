package usecase

import (
	"context"
	"time"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking the ledger lock
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// AccountCacheTTL is how long account snapshots stay in the read cache
	AccountCacheTTL = 30 * time.Second
)

// runOnce is the Retrier used when none is configured.
type runOnce struct{}

func (runOnce) Retry(_ context.Context, operation func() error) error {
	return operation()
}

func retrierOrDefault(r Retrier) Retrier {
	if r == nil {
		return runOnce{}
	}
	return r
}
