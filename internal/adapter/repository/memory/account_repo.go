package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create inserts a new account.
func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	if _, exists := r.store.accounts[account.Identity]; exists {
		return domain.ErrAlreadyRegistered
	}

	r.store.accounts[account.Identity] = *account
	mt.record(func() { delete(r.store.accounts, account.Identity) })

	return nil
}

// GetByID retrieves an account by identity.
func (r *AccountRepository) GetByID(ctx context.Context, identity string) (*domain.Account, error) {
	var (
		acc domain.Account
		ok  bool
	)

	if err := r.store.read(ctx, func() { acc, ok = r.store.accounts[identity] }); err != nil {
		return nil, err
	}

	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return &acc, nil
}

// GetByIDForUpdate retrieves an account inside tx.
func (r *AccountRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, identity string) (*domain.Account, error) {
	if _, err := r.store.txFrom(tx); err != nil {
		return nil, err
	}

	acc, ok := r.store.accounts[identity]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return &acc, nil
}

// GetByIDsForUpdate retrieves the existing accounts among identities inside tx.
func (r *AccountRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, identities []string) ([]*domain.Account, error) {
	if _, err := r.store.txFrom(tx); err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(identities))
	for _, id := range identities {
		if acc, ok := r.store.accounts[id]; ok {
			accounts = append(accounts, &acc)
		}
	}

	return accounts, nil
}

// UpdateEnergyBalance sets the energy balance and bumps the version.
func (r *AccountRepository) UpdateEnergyBalance(_ context.Context, tx usecase.Transaction, identity string, balance uint64, updatedAt time.Time) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	prev, ok := r.store.accounts[identity]
	if !ok {
		return domain.ErrAccountNotFound
	}

	next := prev
	next.EnergyBalance = balance
	next.Version++
	next.UpdatedAt = updatedAt

	r.store.accounts[identity] = next
	mt.record(func() { r.store.accounts[identity] = prev })

	return nil
}

// List lists accounts ordered by identity.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	var accounts []*domain.Account

	err := r.store.read(ctx, func() {
		ids := make([]string, 0, len(r.store.accounts))
		for id := range r.store.accounts {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range page(ids, limit, offset) {
			acc := r.store.accounts[id]
			accounts = append(accounts, &acc)
		}
	})

	return accounts, err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}
