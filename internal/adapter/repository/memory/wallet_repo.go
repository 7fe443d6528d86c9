package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// Create inserts a new wallet.
func (r *WalletRepository) Create(_ context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	r.store.wallets[wallet.Identity] = *wallet
	mt.record(func() { delete(r.store.wallets, wallet.Identity) })

	return nil
}

// GetByID retrieves a wallet by identity.
func (r *WalletRepository) GetByID(ctx context.Context, identity string) (*domain.Wallet, error) {
	var (
		w  domain.Wallet
		ok bool
	)

	if err := r.store.read(ctx, func() { w, ok = r.store.wallets[identity] }); err != nil {
		return nil, err
	}

	if !ok {
		return nil, domain.ErrWalletNotFound
	}

	return &w, nil
}

// GetByIDsForUpdate retrieves the existing wallets among identities inside tx.
func (r *WalletRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, identities []string) ([]*domain.Wallet, error) {
	if _, err := r.store.txFrom(tx); err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(identities))
	for _, id := range identities {
		if w, ok := r.store.wallets[id]; ok {
			wallets = append(wallets, &w)
		}
	}

	return wallets, nil
}

// UpdateBalance sets the wallet balance and bumps the version.
func (r *WalletRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, identity string, balance decimal.Decimal, updatedAt time.Time) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	prev, ok := r.store.wallets[identity]
	if !ok {
		return domain.ErrWalletNotFound
	}

	next := prev
	next.Balance = balance
	next.Version++
	next.UpdatedAt = updatedAt

	r.store.wallets[identity] = next
	mt.record(func() { r.store.wallets[identity] = prev })

	return nil
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create appends an entry.
func (r *EntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	n := len(r.store.entries)
	r.store.entries = append(r.store.entries, *entry)
	mt.record(func() { r.store.entries = r.store.entries[:n] })

	return nil
}

// GetByIdentity lists a wallet's entries, newest first.
func (r *EntryRepository) GetByIdentity(ctx context.Context, identity string, limit, offset int) ([]*domain.Entry, error) {
	var matched []*domain.Entry

	err := r.store.read(ctx, func() {
		for i := len(r.store.entries) - 1; i >= 0; i-- {
			if r.store.entries[i].Identity == identity {
				e := r.store.entries[i]
				matched = append(matched, &e)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return page(matched, limit, offset), nil
}

// GetByTrade lists the entries produced by one trade in creation order.
func (r *EntryRepository) GetByTrade(ctx context.Context, tradeID string) ([]*domain.Entry, error) {
	var matched []*domain.Entry

	err := r.store.read(ctx, func() {
		for i := range r.store.entries {
			if r.store.entries[i].TradeID == tradeID {
				e := r.store.entries[i]
				matched = append(matched, &e)
			}
		}
	})

	return matched, err
}
