package memory

import (
	"context"
	"time"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stores event with the next sequence number.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	n := len(r.store.outbox)
	prevSeq := r.store.outboxSeq

	r.store.outboxSeq++
	event.Sequence = r.store.outboxSeq

	r.store.outbox = append(r.store.outbox, *event)
	mt.record(func() {
		r.store.outbox = r.store.outbox[:n]
		r.store.outboxSeq = prevSeq
	})

	return nil
}

// GetUnpublished returns up to limit unpublished events in sequence order.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent

	err := r.store.read(ctx, func() {
		for i := range r.store.outbox {
			if len(events) >= limit {
				return
			}
			if !r.store.outbox[i].Published {
				e := r.store.outbox[i]
				events = append(events, &e)
			}
		}
	})

	return events, err
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.store.read(ctx, func() {
		for i := range r.store.outbox {
			if r.store.outbox[i].ID == id {
				at := publishedAt
				r.store.outbox[i].Published = true
				r.store.outbox[i].PublishedAt = &at
				return
			}
		}
	})
}

// DeletePublished deletes published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.store.read(ctx, func() {
		kept := r.store.outbox[:0]
		for _, e := range r.store.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		r.store.outbox = kept
	})
}
