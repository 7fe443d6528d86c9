package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/energyledger/internal/domain"
)

func TestRegistrationUseCase_Register(t *testing.T) {
	tests := []struct {
		name        string
		identity    string
		first       domain.Role
		second      domain.Role
		expectError error
	}{
		{name: "prosumer then prosumer", identity: "alice", first: domain.RoleProsumer, second: domain.RoleProsumer, expectError: domain.ErrAlreadyRegistered},
		{name: "prosumer then consumer", identity: "alice", first: domain.RoleProsumer, second: domain.RoleConsumer, expectError: domain.ErrAlreadyRegistered},
		{name: "consumer then prosumer", identity: "bob", first: domain.RoleConsumer, second: domain.RoleProsumer, expectError: domain.ErrAlreadyRegistered},
		{name: "consumer then consumer", identity: "bob", first: domain.RoleConsumer, second: domain.RoleConsumer, expectError: domain.ErrAlreadyRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l := newTestLedger(t)

			register := func(role domain.Role) (*domain.RegisteredEvent, error) {
				if role == domain.RoleProsumer {
					return l.registration.RegisterAsProsumer(ctx, tt.identity)
				}
				return l.registration.RegisterAsConsumer(ctx, tt.identity)
			}

			event, err := register(tt.first)
			if err != nil {
				t.Fatalf("first registration failed: %v", err)
			}
			if event.Identity != tt.identity || event.Role != tt.first {
				t.Fatalf("unexpected event: %+v", event)
			}

			_, err = register(tt.second)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}

			acc, err := l.ledger.GetAccount(ctx, tt.identity)
			if err != nil {
				t.Fatalf("get account failed: %v", err)
			}
			if acc.Role != tt.first {
				t.Errorf("role changed from %s to %s", tt.first, acc.Role)
			}
			if acc.EnergyBalance != 0 {
				t.Errorf("expected zero energy, got %d", acc.EnergyBalance)
			}
		})
	}
}

func TestRegistrationUseCase_RejectsInvalidIdentity(t *testing.T) {
	l := newTestLedger(t)

	if _, err := l.registration.RegisterAsProsumer(context.Background(), ""); !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
}

func TestRegistrationUseCase_WritesOutboxAndMetrics(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	if _, err := l.registration.RegisterAsConsumer(ctx, "0xabc"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	events, err := l.outbox.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("outbox read failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != domain.EventTypeRegistered || events[0].Payload["role"] != "consumer" {
		t.Fatalf("unexpected event: %+v", events[0])
	}

	if got := testutil.ToFloat64(l.metrics.Registrations.WithLabelValues("consumer")); got != 1 {
		t.Fatalf("expected 1 consumer registration, got %v", got)
	}
}
