package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/energyledger/internal/usecase"
)

// TradeRepository implements usecase.TradeRepository.
type TradeRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewTradeRepository creates a new TradeRepository.
func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create appends trade with the next sequence number. Callers hold the
// ledger lock, so MAX(sequence)+1 cannot race.
func (r *TradeRepository) Create(ctx context.Context, tx usecase.Transaction, trade *domain.Trade) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	seq, err := queries.CreateTrade(ctx, generated.CreateTradeParams{
		ID:           trade.ID,
		Prosumer:     trade.Prosumer,
		Consumer:     trade.Consumer,
		Amount:       uint64ToNumeric(trade.Amount),
		PricePerUnit: uint64ToNumeric(trade.PricePerUnit),
		TotalPrice:   uint64ToNumeric(trade.TotalPrice),
		ExecutedAt:   timeToPgTimestamptz(trade.Timestamp),
	})
	if err != nil {
		return err
	}

	trade.Sequence = seq

	return nil
}

// GetByID retrieves a trade by ID.
func (r *TradeRepository) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	row, err := r.queries.GetTrade(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTradeNotFound
		}

		return nil, err
	}

	return rowToTrade(row)
}

// List returns the full trade history in execution order.
func (r *TradeRepository) List(ctx context.Context) ([]*domain.Trade, error) {
	rows, err := r.queries.ListTrades(ctx)
	if err != nil {
		return nil, err
	}

	return rowsToTrades(rows)
}

// ListByParticipant lists trades where identity was either side.
func (r *TradeRepository) ListByParticipant(ctx context.Context, identity string, limit, offset int) ([]*domain.Trade, error) {
	rows, err := r.queries.ListTradesByParticipant(ctx, generated.ListTradesByParticipantParams{
		Prosumer: identity,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTrades(rows)
}

func rowsToTrades(rows []generated.Trade) ([]*domain.Trade, error) {
	trades := make([]*domain.Trade, 0, len(rows))
	for _, row := range rows {
		trade, err := rowToTrade(row)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

func rowToTrade(row generated.Trade) (*domain.Trade, error) {
	amount, err := numericToUint64(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("trade %s amount: %w", row.ID, err)
	}
	price, err := numericToUint64(row.PricePerUnit)
	if err != nil {
		return nil, fmt.Errorf("trade %s price: %w", row.ID, err)
	}
	total, err := numericToUint64(row.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("trade %s total: %w", row.ID, err)
	}

	return &domain.Trade{
		ID:           row.ID,
		Sequence:     row.Sequence,
		Prosumer:     row.Prosumer,
		Consumer:     row.Consumer,
		Amount:       amount,
		PricePerUnit: price,
		TotalPrice:   total,
		Timestamp:    row.ExecutedAt.Time.UTC(),
	}, nil
}
