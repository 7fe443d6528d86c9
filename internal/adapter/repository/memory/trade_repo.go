package memory

import (
	"context"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// TradeRepository implements usecase.TradeRepository.
type TradeRepository struct {
	store *Store
}

// NewTradeRepository creates a new TradeRepository.
func NewTradeRepository(store *Store) *TradeRepository {
	return &TradeRepository{store: store}
}

// Create appends trade with the next sequence number.
func (r *TradeRepository) Create(_ context.Context, tx usecase.Transaction, trade *domain.Trade) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	n := len(r.store.trades)
	trade.Sequence = int64(n) + 1

	r.store.trades = append(r.store.trades, *trade)
	mt.record(func() { r.store.trades = r.store.trades[:n] })

	return nil
}

// GetByID retrieves a trade by ID.
func (r *TradeRepository) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	var found *domain.Trade

	err := r.store.read(ctx, func() {
		for i := range r.store.trades {
			if r.store.trades[i].ID == id {
				t := r.store.trades[i]
				found = &t
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, domain.ErrTradeNotFound
	}

	return found, nil
}

// List returns the full trade history in execution order.
func (r *TradeRepository) List(ctx context.Context) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	err := r.store.read(ctx, func() {
		trades = make([]*domain.Trade, 0, len(r.store.trades))
		for i := range r.store.trades {
			t := r.store.trades[i]
			trades = append(trades, &t)
		}
	})

	return trades, err
}

// ListByParticipant lists trades where identity bought or sold, in execution order.
func (r *TradeRepository) ListByParticipant(ctx context.Context, identity string, limit, offset int) ([]*domain.Trade, error) {
	var matched []*domain.Trade

	err := r.store.read(ctx, func() {
		for i := range r.store.trades {
			t := r.store.trades[i]
			if t.Prosumer == identity || t.Consumer == identity {
				matched = append(matched, &t)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return page(matched, limit, offset), nil
}

// ListingRepository implements usecase.ListingRepository.
type ListingRepository struct {
	store *Store
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(store *Store) *ListingRepository {
	return &ListingRepository{store: store}
}

// Create appends a listing.
func (r *ListingRepository) Create(_ context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	n := len(r.store.listings)
	r.store.listings = append(r.store.listings, *listing)
	mt.record(func() { r.store.listings = r.store.listings[:n] })

	return nil
}
