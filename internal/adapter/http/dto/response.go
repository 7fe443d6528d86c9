package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
)

// Integer quantities are rendered as decimal strings so JSON clients that
// parse numbers as float64 do not lose precision above 2^53.

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// RegisteredResponse is returned by the registration endpoints.
type RegisteredResponse struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

// RegisteredFromDomain converts a registration event to response.
func RegisteredFromDomain(e *domain.RegisteredEvent) *RegisteredResponse {
	return &RegisteredResponse{Identity: e.Identity, Role: e.Role.String()}
}

// EnergyListedResponse is returned by the listing endpoint.
type EnergyListedResponse struct {
	Identity string `json:"identity"`
	Amount   string `json:"amount"`
}

// EnergyListedFromDomain converts a listing event to response.
func EnergyListedFromDomain(e *domain.EnergyListedEvent) *EnergyListedResponse {
	return &EnergyListedResponse{Identity: e.Identity, Amount: formatUint(e.Amount)}
}

// EnergyPurchasedResponse is returned by the buy endpoint.
type EnergyPurchasedResponse struct {
	TradeID      string `json:"trade_id"`
	Buyer        string `json:"buyer"`
	Seller       string `json:"seller"`
	Amount       string `json:"amount"`
	PricePerUnit string `json:"price_per_unit"`
	TotalPrice   string `json:"total_price"`
}

// EnergyPurchasedFromDomain converts a purchase event to response.
func EnergyPurchasedFromDomain(e *domain.EnergyPurchasedEvent) *EnergyPurchasedResponse {
	return &EnergyPurchasedResponse{
		TradeID:      e.TradeID,
		Buyer:        e.Buyer,
		Seller:       e.Seller,
		Amount:       formatUint(e.Amount),
		PricePerUnit: formatUint(e.PricePerUnit),
		TotalPrice:   formatUint(e.TotalPrice),
	}
}

// AccountResponse represents a participant in API responses.
type AccountResponse struct {
	Identity      string     `json:"identity"`
	Role          string     `json:"role"`
	EnergyBalance string     `json:"energy_balance"`
	Version       int64      `json:"version"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Identity:      a.Identity,
		Role:          a.Role.String(),
		EnergyBalance: formatUint(a.EnergyBalance),
		Version:       a.Version,
		CreatedAt:     optionalTime(a.CreatedAt),
		UpdatedAt:     optionalTime(a.UpdatedAt),
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of participants.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TradeResponse represents a settled trade in API responses.
type TradeResponse struct {
	ID           string    `json:"id"`
	Sequence     int64     `json:"sequence"`
	Prosumer     string    `json:"prosumer"`
	Consumer     string    `json:"consumer"`
	Amount       string    `json:"amount"`
	PricePerUnit string    `json:"price_per_unit"`
	TotalPrice   string    `json:"total_price"`
	Timestamp    time.Time `json:"timestamp"`
}

// TradeFromDomain converts domain trade to response.
func TradeFromDomain(t *domain.Trade) *TradeResponse {
	return &TradeResponse{
		ID:           t.ID,
		Sequence:     t.Sequence,
		Prosumer:     t.Prosumer,
		Consumer:     t.Consumer,
		Amount:       formatUint(t.Amount),
		PricePerUnit: formatUint(t.PricePerUnit),
		TotalPrice:   formatUint(t.TotalPrice),
		Timestamp:    t.Timestamp,
	}
}

// TradesFromDomain converts domain trades to responses.
func TradesFromDomain(trades []*domain.Trade) []*TradeResponse {
	result := make([]*TradeResponse, len(trades))
	for i, t := range trades {
		result[i] = TradeFromDomain(t)
	}
	return result
}

// ListTradesResponse represents a list of trades.
type ListTradesResponse struct {
	Trades []*TradeResponse `json:"trades"`
	Total  int64            `json:"total"`
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	Identity  string          `json:"identity"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// WalletFromDomain converts domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		Identity:  w.Identity,
		Balance:   w.Balance,
		Version:   w.Version,
		UpdatedAt: optionalTime(w.UpdatedAt),
	}
}

// EntryResponse represents a wallet entry in API responses.
type EntryResponse struct {
	ID              string          `json:"id"`
	Identity        string          `json:"identity"`
	TradeID         string          `json:"trade_id,omitempty"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	WalletVersion   int64           `json:"wallet_version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		Identity:        e.Identity,
		TradeID:         e.TradeID,
		Kind:            string(e.Kind),
		Amount:          e.Amount,
		PreviousBalance: e.PreviousBalance,
		CurrentBalance:  e.CurrentBalance,
		WalletVersion:   e.WalletVersion,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse represents a page of wallet entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// HealthResponse reports the status of the service and its dependencies.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// optionalTime hides zero timestamps, which unset accounts and empty wallets carry.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
