package domain

import (
	"errors"
	"math"
	"testing"
)

func TestAccount_Register(t *testing.T) {
	tests := []struct {
		name        string
		current     Role
		requested   Role
		expectError error
	}{
		{
			name:      "unset to prosumer",
			current:   RoleUnset,
			requested: RoleProsumer,
		},
		{
			name:      "unset to consumer",
			current:   RoleUnset,
			requested: RoleConsumer,
		},
		{
			name:        "prosumer cannot re-register",
			current:     RoleProsumer,
			requested:   RoleProsumer,
			expectError: ErrAlreadyRegistered,
		},
		{
			name:        "prosumer cannot switch to consumer",
			current:     RoleProsumer,
			requested:   RoleConsumer,
			expectError: ErrAlreadyRegistered,
		},
		{
			name:        "consumer cannot switch to prosumer",
			current:     RoleConsumer,
			requested:   RoleProsumer,
			expectError: ErrAlreadyRegistered,
		},
		{
			name:        "unset is not a grantable role",
			current:     RoleUnset,
			requested:   RoleUnset,
			expectError: ErrInvalidRole,
		},
		{
			name:        "unknown role rejected",
			current:     RoleUnset,
			requested:   Role(9),
			expectError: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Identity: "0xabc", Role: tt.current}

			err := acc.Register(tt.requested)

			if tt.expectError == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if acc.Role != tt.requested {
					t.Errorf("expected role %s, got %s", tt.requested, acc.Role)
				}
				if acc.EnergyBalance != 0 {
					t.Errorf("expected zero energy balance, got %d", acc.EnergyBalance)
				}
				return
			}

			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected error %v, got %v", tt.expectError, err)
			}
			if acc.Role != tt.current {
				t.Errorf("role changed on failure: %s -> %s", tt.current, acc.Role)
			}
		})
	}
}

func TestAccount_ValidateListing(t *testing.T) {
	tests := []struct {
		name        string
		role        Role
		balance     uint64
		amount      uint64
		expectError error
	}{
		{name: "prosumer lists", role: RoleProsumer, balance: 0, amount: 100},
		{name: "consumer rejected", role: RoleConsumer, amount: 100, expectError: ErrNotProsumer},
		{name: "unregistered rejected", role: RoleUnset, amount: 100, expectError: ErrNotProsumer},
		{name: "overflow rejected", role: RoleProsumer, balance: math.MaxUint64 - 1, amount: 2, expectError: ErrEnergyOverflow},
		{name: "exact max allowed", role: RoleProsumer, balance: math.MaxUint64 - 2, amount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Role: tt.role, EnergyBalance: tt.balance}

			err := acc.ValidateListing(tt.amount)

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestAccount_ValidateEnergyDebit(t *testing.T) {
	acc := &Account{Role: RoleProsumer, EnergyBalance: 100}

	if err := acc.ValidateEnergyDebit(100); err != nil {
		t.Errorf("expected exact balance debit to pass, got %v", err)
	}

	if err := acc.ValidateEnergyDebit(101); !errors.Is(err, ErrInsufficientEnergy) {
		t.Errorf("expected ErrInsufficientEnergy, got %v", err)
	}
}

func TestAccount_ApplyEnergy(t *testing.T) {
	acc := &Account{EnergyBalance: 100}

	if got := acc.ApplyEnergyDebit(30); got != 70 {
		t.Errorf("expected balance 70, got %d", got)
	}

	if got := acc.ApplyEnergyCredit(30); got != 130 {
		t.Errorf("expected balance 130, got %d", got)
	}
}

func TestNewUnsetAccount(t *testing.T) {
	acc := NewUnsetAccount("0xabc")

	if acc.Identity != "0xabc" || acc.Role != RoleUnset || acc.EnergyBalance != 0 {
		t.Fatalf("unexpected unset account: %+v", acc)
	}
}
