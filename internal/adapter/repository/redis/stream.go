package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/energyledger/internal/domain"
)

// DefaultStream is the stream key ledger events are appended to.
const DefaultStream = "energyledger:events"

// StreamPublisher appends outbox events to a Redis stream with XADD.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher creates a StreamPublisher. An empty stream uses
// DefaultStream; maxLen > 0 trims the stream approximately.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish appends event to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"sequence":       strconv.FormatInt(event.Sequence, 10),
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
			"payload":        string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	return p.client.XAdd(ctx, args).Err()
}
