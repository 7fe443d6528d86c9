package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/energyledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository on the participants table.
type AccountRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a registered participant.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.CreateParticipant(ctx, generated.CreateParticipantParams{
		Identity:      account.Identity,
		Role:          int16(account.Role),
		EnergyBalance: uint64ToNumeric(account.EnergyBalance),
		Version:       account.Version,
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves a participant by identity.
func (r *AccountRepository) GetByID(ctx context.Context, identity string) (*domain.Account, error) {
	row, err := r.queries.GetParticipant(ctx, identity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row)
}

// GetByIDForUpdate retrieves a participant with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, identity string) (*domain.Account, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetParticipantForUpdate(ctx, identity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row)
}

// GetByIDsForUpdate locks the existing participants among identities in identity order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, identities []string) ([]*domain.Account, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	rows, err := queries.GetParticipantsForUpdate(ctx, identities)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// UpdateEnergyBalance sets the energy balance and bumps the row version.
func (r *AccountRepository) UpdateEnergyBalance(ctx context.Context, tx usecase.Transaction, identity string, balance uint64, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.UpdateParticipantEnergy(ctx, generated.UpdateParticipantEnergyParams{
		Identity:      identity,
		EnergyBalance: uint64ToNumeric(balance),
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})
}

// List lists participants ordered by identity.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListParticipants(ctx, generated.ListParticipantsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func rowToAccount(row generated.Participant) (*domain.Account, error) {
	balance, err := numericToUint64(row.EnergyBalance)
	if err != nil {
		return nil, fmt.Errorf("participant %s: %w", row.Identity, err)
	}

	return &domain.Account{
		Identity:      row.Identity,
		Role:          domain.Role(row.Role),
		EnergyBalance: balance,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func uint64ToNumeric(v uint64) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).SetUint64(v), Valid: true}
}

func numericToUint64(n pgtype.Numeric) (uint64, error) {
	d := numericToDecimal(n)
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("numeric %s is not a whole unsigned amount", d)
	}

	i := d.BigInt()
	if !i.IsUint64() {
		return 0, fmt.Errorf("numeric %s overflows uint64", d)
	}

	return i.Uint64(), nil
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
