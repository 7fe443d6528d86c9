package domain

import (
	"strconv"
	"time"
)

// Event types
const (
	EventTypeRegistered      = "participant.registered"
	EventTypeEnergyListed    = "energy.listed"
	EventTypeEnergyPurchased = "energy.purchased"
	EventTypeValueDeposited  = "wallet.deposited"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypeTrade   = "trade"
	AggregateTypeWallet  = "wallet"
)

// OutboxEvent represents an event to be published.
// Sequence reflects commit order and is assigned by the store.
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Payload       map[string]any
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Sequence      int64
	Published     bool
}

// RegisteredEvent is emitted when an identity is granted a role.
type RegisteredEvent struct {
	Identity string `json:"identity"`
	Role     Role   `json:"role"`
}

// Payload renders the event for the outbox.
func (e RegisteredEvent) Payload() map[string]any {
	return map[string]any{
		"identity": e.Identity,
		"role":     e.Role.String(),
		"role_id":  int(e.Role),
	}
}

// EnergyListedEvent is emitted when a prosumer lists energy.
type EnergyListedEvent struct {
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
}

// Payload renders the event for the outbox.
func (e EnergyListedEvent) Payload() map[string]any {
	return map[string]any{
		"identity": e.Identity,
		"amount":   strconv.FormatUint(e.Amount, 10),
	}
}

// EnergyPurchasedEvent is emitted for every settled trade.
type EnergyPurchasedEvent struct {
	Buyer        string `json:"buyer"`
	Seller       string `json:"seller"`
	TradeID      string `json:"trade_id"`
	Amount       uint64 `json:"amount"`
	PricePerUnit uint64 `json:"price_per_unit"`
	TotalPrice   uint64 `json:"total_price"`
}

// Payload renders the event for the outbox. Integers are strings so that
// JSON consumers do not lose precision above 2^53.
func (e EnergyPurchasedEvent) Payload() map[string]any {
	return map[string]any{
		"buyer":          e.Buyer,
		"seller":         e.Seller,
		"trade_id":       e.TradeID,
		"amount":         strconv.FormatUint(e.Amount, 10),
		"price_per_unit": strconv.FormatUint(e.PricePerUnit, 10),
		"total_price":    strconv.FormatUint(e.TotalPrice, 10),
	}
}

// ValueDepositedEvent is emitted when value enters a wallet from outside the ledger.
type ValueDepositedEvent struct {
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
	Balance  string `json:"balance"`
}

// Payload renders the event for the outbox.
func (e ValueDepositedEvent) Payload() map[string]any {
	return map[string]any{
		"identity": e.Identity,
		"amount":   strconv.FormatUint(e.Amount, 10),
		"balance":  e.Balance,
	}
}
