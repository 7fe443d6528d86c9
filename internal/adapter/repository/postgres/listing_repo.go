package postgres

import (
	"context"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/postgres/generated"
	"github.com/iho/energyledger/internal/usecase"
)

// ListingRepository implements usecase.ListingRepository.
type ListingRepository struct{}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{}
}

// Create appends a listing record.
func (r *ListingRepository) Create(ctx context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return queries.CreateListing(ctx, generated.CreateListingParams{
		ID:        listing.ID,
		Identity:  listing.Identity,
		Amount:    uint64ToNumeric(listing.Amount),
		CreatedAt: timeToPgTimestamptz(listing.CreatedAt),
	})
}
