package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a participant's value balance in the ledger currency.
type Wallet struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Identity  string
	Balance   decimal.Decimal
	Version   int64
}

// NewEmptyWallet returns the zero wallet reported for identities without deposits.
func NewEmptyWallet(identity string) *Wallet {
	return &Wallet{Identity: identity, Balance: decimal.Zero}
}

// ValidateDebit checks if the wallet can be debited by amount.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}

// EntryKind classifies a wallet movement.
type EntryKind string

const (
	EntryKindDeposit  EntryKind = "deposit"
	EntryKindPayment  EntryKind = "payment"
	EntryKindProceeds EntryKind = "proceeds"
	EntryKindRefund   EntryKind = "refund"
)

// IsSettlement reports whether the entry was produced by a trade.
// Settlement entries of one trade always sum to zero.
func (k EntryKind) IsSettlement() bool {
	return k == EntryKindPayment || k == EntryKindProceeds || k == EntryKindRefund
}

// Entry represents a single wallet movement (debit or credit).
type Entry struct {
	CreatedAt       time.Time
	ID              string
	Identity        string
	TradeID         string
	Kind            EntryKind
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	CurrentBalance  decimal.Decimal
	WalletVersion   int64
}

// Value converts an integer amount of the ledger currency to a wallet value.
func Value(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
}
