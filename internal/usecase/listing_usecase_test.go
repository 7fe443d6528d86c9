package usecase_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/iho/energyledger/internal/domain"
)

func TestListingUseCase_AddEnergy(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	l.prosumer(t, "X", 0)

	event, err := l.listing.AddEnergy(ctx, "X", 100)
	if err != nil {
		t.Fatalf("add energy failed: %v", err)
	}
	if event.Identity != "X" || event.Amount != 100 {
		t.Fatalf("unexpected event: %+v", event)
	}

	acc, err := l.ledger.GetAccount(ctx, "X")
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if acc.EnergyBalance != 100 {
		t.Fatalf("expected balance 100, got %d", acc.EnergyBalance)
	}

	if _, err := l.listing.AddEnergy(ctx, "X", 50); err != nil {
		t.Fatalf("second listing failed: %v", err)
	}

	acc, _ = l.ledger.GetAccount(ctx, "X")
	if acc.EnergyBalance != 150 {
		t.Fatalf("expected balance 150, got %d", acc.EnergyBalance)
	}
}

func TestListingUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		identity    string
		amount      uint64
		expectError error
	}{
		{name: "consumer cannot list", identity: "Y", amount: 10, expectError: domain.ErrNotProsumer},
		{name: "unregistered cannot list", identity: "nobody", amount: 10, expectError: domain.ErrNotProsumer},
		{name: "zero amount", identity: "X", amount: 0, expectError: domain.ErrInvalidAmount},
		{name: "zero amount checked before role", identity: "Y", amount: 0, expectError: domain.ErrInvalidAmount},
		{name: "overflow", identity: "X", amount: math.MaxUint64, expectError: domain.ErrEnergyOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l := newTestLedger(t)

			l.prosumer(t, "X", 1)
			l.consumer(t, "Y", 0)

			before := l.snapshot(t, "X", "Y", tt.identity)

			_, err := l.listing.AddEnergy(ctx, tt.identity, tt.amount)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}

			after := l.snapshot(t, "X", "Y", tt.identity)
			if !snapshotsEqual(before, after) {
				t.Fatalf("failed listing changed state")
			}
		})
	}
}
