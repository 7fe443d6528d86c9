package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/energyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/energyledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Totals aggregates the ledger in a single statement so every sum comes
// from the same snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (*usecase.LedgerTotals, error) {
	q := generated.New(r.pool)
	row, err := q.GetLedgerTotals(ctx)
	if err != nil {
		return nil, err
	}

	return &usecase.LedgerTotals{
		EnergyBalance:   numericToDecimal(row.EnergyBalance),
		ListedEnergy:    numericToDecimal(row.ListedEnergy),
		WalletBalance:   numericToDecimal(row.WalletBalance),
		EntryAmount:     numericToDecimal(row.EntryAmount),
		SettlementNet:   numericToDecimal(row.SettlementNet),
		TradeCount:      row.TradeCount,
		MaxSequence:     row.MaxSequence,
		AccountCount:    row.AccountCount,
		UnsetWithEnergy: row.UnsetWithEnergy,
	}, nil
}
