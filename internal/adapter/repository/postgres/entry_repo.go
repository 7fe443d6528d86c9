package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/energyledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository on wallet_entries.
type EntryRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.CreateWalletEntry(ctx, generated.CreateWalletEntryParams{
		ID:              entry.ID,
		Identity:        entry.Identity,
		TradeID:         pgtype.Text{String: entry.TradeID, Valid: entry.TradeID != ""},
		Kind:            string(entry.Kind),
		Amount:          decimalToNumeric(entry.Amount),
		PreviousBalance: decimalToNumeric(entry.PreviousBalance),
		CurrentBalance:  decimalToNumeric(entry.CurrentBalance),
		WalletVersion:   entry.WalletVersion,
		CreatedAt:       timeToPgTimestamptz(entry.CreatedAt),
	})
}

// GetByIdentity retrieves a wallet's entries, newest first.
func (r *EntryRepository) GetByIdentity(ctx context.Context, identity string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListWalletEntries(ctx, generated.ListWalletEntriesParams{
		Identity: identity,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// GetByTrade retrieves the settlement entries of one trade.
func (r *EntryRepository) GetByTrade(ctx context.Context, tradeID string) ([]*domain.Entry, error) {
	rows, err := r.queries.ListWalletEntriesByTrade(ctx, pgtype.Text{String: tradeID, Valid: true})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

func rowsToEntries(rows []generated.WalletEntry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries
}

func rowToEntry(row generated.WalletEntry) *domain.Entry {
	return &domain.Entry{
		ID:              row.ID,
		Identity:        row.Identity,
		TradeID:         row.TradeID.String,
		Kind:            domain.EntryKind(row.Kind),
		Amount:          numericToDecimal(row.Amount),
		PreviousBalance: numericToDecimal(row.PreviousBalance),
		CurrentBalance:  numericToDecimal(row.CurrentBalance),
		WalletVersion:   row.WalletVersion,
		CreatedAt:       row.CreatedAt.Time,
	}
}
