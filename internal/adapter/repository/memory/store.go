// Package memory is a single-process ledger store. One transaction runs at a
// time; every mutation is journaled and undone on rollback.
package memory

import (
	"context"
	"errors"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

var (
	// ErrTxDone is returned when a finished transaction is used.
	ErrTxDone = errors.New("memory: transaction already finished")
	// ErrForeignTx is returned when a transaction from another store is passed in.
	ErrForeignTx = errors.New("memory: transaction belongs to a different store")
)

// Store holds the ledger state. The zero value is not usable; call NewStore.
type Store struct {
	// sem is held by an open transaction and briefly by plain reads, so
	// readers never observe uncommitted state.
	sem chan struct{}

	accounts  map[string]domain.Account
	wallets   map[string]domain.Wallet
	listings  []domain.Listing
	trades    []domain.Trade
	entries   []domain.Entry
	outbox    []domain.OutboxEvent
	outboxSeq int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:      make(chan struct{}, 1),
		accounts: make(map[string]domain.Account),
		wallets:  make(map[string]domain.Wallet),
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

// read runs fn with the store locked for a consistent snapshot.
func (s *Store) read(ctx context.Context, fn func()) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	fn()

	return nil
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for exclusive access to the store and starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.acquire(ctx); err != nil {
		return nil, err
	}

	return &Tx{store: m.store}, nil
}

// Tx is an exclusive, journaled transaction over a Store.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

// Commit keeps all journaled changes. A cancelled context rolls back instead.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}

	if err := ctx.Err(); err != nil {
		t.rollback()
		return err
	}

	t.undo = nil
	t.finish()

	return nil
}

// Rollback undoes every change. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}

	t.rollback()

	return nil
}

func (t *Tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.finish()
}

func (t *Tx) finish() {
	t.done = true
	t.store.release()
}

func (t *Tx) record(fn func()) {
	t.undo = append(t.undo, fn)
}

func (s *Store) txFrom(tx usecase.Transaction) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, ErrForeignTx
	}

	if mt.done {
		return nil, ErrTxDone
	}

	return mt, nil
}
