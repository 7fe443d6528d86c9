package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
	"github.com/iho/energyledger/internal/usecase"
)

// EventPublisher relays committed outbox events to a Publisher in commit order.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	batchSize  int
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	// Retention > 0 deletes published events older than it after each batch.
	Retention time.Duration
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	// Process immediately on start
	if _, err := ep.ProcessOnce(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := ep.ProcessOnce(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
		}
	}
}

// ProcessOnce publishes one batch and returns how many events were delivered.
// Delivery stops at the first failing event so that later events are never
// observed before an earlier one; the failed event is retried next batch.
func (ep *EventPublisher) ProcessOnce(ctx context.Context) (int, error) {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}

	delivered := 0
	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			if ep.metrics != nil {
				ep.metrics.EventsFailed.WithLabelValues(event.EventType).Inc()
			}
			return delivered, fmt.Errorf("publish event %s (seq %d): %w", event.ID, event.Sequence, err)
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			return delivered, fmt.Errorf("mark event %s published: %w", event.ID, err)
		}

		if ep.metrics != nil {
			ep.metrics.EventsPublished.WithLabelValues(event.EventType).Inc()
		}
		ep.logger.Debug().
			Str("event_id", event.ID).
			Int64("sequence", event.Sequence).
			Str("event_type", event.EventType).
			Msg("event published")

		delivered++
	}

	if delivered > 0 {
		ep.logger.Info().Int("count", delivered).Msg("outbox batch published")
	}

	if ep.retention > 0 {
		if err := ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-ep.retention)); err != nil {
			return delivered, fmt.Errorf("prune outbox: %w", err)
		}
	}

	return delivered, nil
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Int64("sequence", event.Sequence).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("ledger event")

	return nil
}

// MultiPublisher delivers every event to each publisher in turn.
type MultiPublisher []Publisher

// Publish fails if any publisher fails. Publishers before the failing one
// may see the event again on retry, so they must tolerate duplicates.
func (m MultiPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
