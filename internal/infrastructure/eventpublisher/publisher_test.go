package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
	"github.com/iho/energyledger/internal/usecase"
)

func TestProcessOncePublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", Sequence: 1, EventType: domain.EventTypeRegistered}},
	}
	pub := &stubPublisher{}
	ep, m := newTestPublisher(repo, pub)

	n, err := ep.ProcessOnce(context.Background())
	if err != nil {
		t.Fatalf("ProcessOnce failed: %v", err)
	}

	if n != 1 || len(pub.published) != 1 {
		t.Fatalf("expected one published event, got n=%d published=%d", n, len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventTypeRegistered)); got != 1 {
		t.Fatalf("expected published counter 1, got %v", got)
	}
}

func TestProcessOnceStopsAtFirstFailure(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", Sequence: 1, EventType: "type"},
			{ID: "evt-2", Sequence: 2, EventType: "type"},
			{ID: "evt-3", Sequence: 3, EventType: "type"},
		},
	}
	failure := errors.New("broker down")
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-2": failure},
	}
	ep, m := newTestPublisher(repo, pub)

	n, err := ep.ProcessOnce(context.Background())
	if !errors.Is(err, failure) {
		t.Fatalf("expected publish failure, got %v", err)
	}

	if n != 1 || len(pub.published) != 1 || pub.published[0].ID != "evt-1" {
		t.Fatalf("expected only evt-1 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected only evt-1 to be marked, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(m.EventsFailed.WithLabelValues("type")); got != 1 {
		t.Fatalf("expected failed counter 1, got %v", got)
	}

	// the next batch resumes at the failed event
	delete(pub.errorsByID, "evt-2")
	if _, err := ep.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("retry batch failed: %v", err)
	}
	if len(pub.published) != 3 || pub.published[1].ID != "evt-2" || pub.published[2].ID != "evt-3" {
		t.Fatalf("expected evt-2 then evt-3 on retry, got %#v", pub.published)
	}
}

func TestProcessOnceMarkFailureStops(t *testing.T) {
	repo := &stubOutboxRepo{
		events:  []*domain.OutboxEvent{{ID: "evt-1"}, {ID: "evt-2"}},
		markErr: errors.New("db down"),
	}
	pub := &stubPublisher{}
	ep, _ := newTestPublisher(repo, pub)

	if _, err := ep.ProcessOnce(context.Background()); err == nil {
		t.Fatalf("expected mark failure to surface")
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected delivery to stop after the mark failure, got %d", len(pub.published))
	}
}

func TestProcessOncePrunesWithRetention(t *testing.T) {
	repo := &stubOutboxRepo{}
	ep, _ := newTestPublisher(repo, &stubPublisher{})
	ep.retention = time.Hour
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return fixed }

	if _, err := ep.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("ProcessOnce failed: %v", err)
	}
	if !repo.prunedBefore.Equal(fixed.Add(-time.Hour)) {
		t.Fatalf("expected prune before %s, got %s", fixed.Add(-time.Hour), repo.prunedBefore)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep, _ := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:        "evt-1",
		EventType: domain.EventTypeEnergyPurchased,
		Payload:   map[string]any{"amount": "5"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"payload":{"amount":"5"}`) || !strings.Contains(out, domain.EventTypeEnergyPurchased) {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestMultiPublisher(t *testing.T) {
	a := &stubPublisher{}
	b := &stubPublisher{errorsByID: map[string]error{"evt-1": errors.New("b failed")}}

	err := MultiPublisher{a, b}.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"})
	if err == nil || !strings.Contains(err.Error(), "b failed") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(a.published) != 1 {
		t.Fatalf("expected first publisher to receive the event")
	}

	if err := (MultiPublisher{a}).Publish(context.Background(), &domain.OutboxEvent{ID: "evt-2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub Publisher) (*EventPublisher, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Metrics:    m,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	}), m
}

// stubOutboxRepo hides marked events from later batches like a real store.
type stubOutboxRepo struct {
	events       []*domain.OutboxEvent
	marked       []string
	markErr      error
	prunedBefore time.Time
}

var _ usecase.OutboxRepository = (*stubOutboxRepo)(nil)

func (s *stubOutboxRepo) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	for _, e := range s.events {
		if e.Published {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *stubOutboxRepo) MarkPublished(_ context.Context, id string, _ time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, id)
	for _, e := range s.events {
		if e.ID == id {
			e.Published = true
		}
	}
	return nil
}

func (s *stubOutboxRepo) DeletePublished(_ context.Context, before time.Time) error {
	s.prunedBefore = before
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
