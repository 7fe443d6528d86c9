package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/energyledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a wallet.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.CreateWallet(ctx, generated.CreateWalletParams{
		Identity:  wallet.Identity,
		Balance:   decimalToNumeric(wallet.Balance),
		Version:   wallet.Version,
		CreatedAt: timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(wallet.UpdatedAt),
	})
}

// GetByID retrieves a wallet by identity.
func (r *WalletRepository) GetByID(ctx context.Context, identity string) (*domain.Wallet, error) {
	row, err := r.queries.GetWallet(ctx, identity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDsForUpdate locks the existing wallets among identities in identity order.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, identities []string) ([]*domain.Wallet, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	rows, err := queries.GetWalletsForUpdate(ctx, identities)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

// UpdateBalance sets the wallet balance and bumps its version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, identity string, balance decimal.Decimal, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		Identity:  identity,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		Identity:  row.Identity,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
