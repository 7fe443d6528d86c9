package domain

import (
	"math"
	"time"
)

// Account is a participant's ledger record, keyed by identity.
type Account struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Identity      string
	EnergyBalance uint64
	Version       int64
	Role          Role
}

// NewUnsetAccount returns the record reported for identities that never registered.
func NewUnsetAccount(identity string) *Account {
	return &Account{Identity: identity, Role: RoleUnset}
}

// Register grants role to an unregistered account.
func (a *Account) Register(role Role) error {
	if !role.IsRegistered() {
		return ErrInvalidRole
	}

	if a.Role.IsRegistered() {
		return ErrAlreadyRegistered
	}

	a.Role = role
	a.EnergyBalance = 0

	return nil
}

// ValidateListing checks that the account may list amount more energy units.
func (a *Account) ValidateListing(amount uint64) error {
	if a.Role != RoleProsumer {
		return ErrNotProsumer
	}

	return a.ValidateEnergyCredit(amount)
}

// ValidateEnergyCredit checks that adding amount does not overflow the balance.
func (a *Account) ValidateEnergyCredit(amount uint64) error {
	if amount > math.MaxUint64-a.EnergyBalance {
		return ErrEnergyOverflow
	}
	return nil
}

// ValidateEnergyDebit checks that the account holds at least amount units.
func (a *Account) ValidateEnergyDebit(amount uint64) error {
	if a.EnergyBalance < amount {
		return ErrInsufficientEnergy
	}
	return nil
}

// ApplyEnergyCredit returns the balance after adding amount.
// Callers must run ValidateEnergyCredit first.
func (a *Account) ApplyEnergyCredit(amount uint64) uint64 {
	return a.EnergyBalance + amount
}

// ApplyEnergyDebit returns the balance after removing amount.
// Callers must run ValidateEnergyDebit first.
func (a *Account) ApplyEnergyDebit(amount uint64) uint64 {
	return a.EnergyBalance - amount
}
