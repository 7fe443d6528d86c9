package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
)

// LedgerUseCase serves ledger reads and the ledger-wide consistency check.
type LedgerUseCase struct {
	accountRepo AccountRepository
	tradeRepo   TradeRepository
	ledgerRepo  LedgerRepository
	accounts    *AccountCache
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	accountRepo AccountRepository,
	tradeRepo TradeRepository,
	ledgerRepo LedgerRepository,
	accounts *AccountCache,
) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		tradeRepo:   tradeRepo,
		ledgerRepo:  ledgerRepo,
		accounts:    accounts,
	}
}

// GetAccount returns the identity's account. Unknown identities are reported
// as unregistered with zero energy rather than as an error.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, identity string) (*domain.Account, error) {
	if account, ok := uc.accounts.get(ctx, identity); ok {
		return account, nil
	}

	account, err := uc.accountRepo.GetByID(ctx, identity)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.NewUnsetAccount(identity), nil
	}
	if err != nil {
		return nil, err
	}

	uc.accounts.fill(ctx, account)

	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists registered accounts with pagination.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// GetTradeHistory returns every trade in execution order.
func (uc *LedgerUseCase) GetTradeHistory(ctx context.Context) ([]*domain.Trade, error) {
	return uc.tradeRepo.List(ctx)
}

// GetTrade retrieves a trade by ID.
func (uc *LedgerUseCase) GetTrade(ctx context.Context, id string) (*domain.Trade, error) {
	return uc.tradeRepo.GetByID(ctx, id)
}

// ListTradesByParticipantInput represents input for listing a participant's trades.
type ListTradesByParticipantInput struct {
	Identity string
	Limit    int
	Offset   int
}

// ListTradesByParticipant lists trades where the identity bought or sold.
func (uc *LedgerUseCase) ListTradesByParticipant(ctx context.Context, input ListTradesByParticipantInput) ([]*domain.Trade, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.tradeRepo.ListByParticipant(ctx, input.Identity, limit, offset)
}

// ConsistencyReport is the outcome of CheckConsistency.
type ConsistencyReport struct {
	CheckedAt     time.Time       `json:"checked_at"`
	EnergyBalance decimal.Decimal `json:"energy_balance"`
	ListedEnergy  decimal.Decimal `json:"listed_energy"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	EntryTotal    decimal.Decimal `json:"entry_total"`
	SettlementNet decimal.Decimal `json:"settlement_net"`
	Violations    []string        `json:"violations,omitempty"`
	Accounts      int64           `json:"accounts"`
	Trades        int64           `json:"trades"`
	Consistent    bool            `json:"consistent"`
}

// CheckConsistency verifies the ledger-wide conservation rules. It returns the
// report together with ErrInconsistentLedger when any rule is broken.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		CheckedAt:     time.Now().UTC(),
		EnergyBalance: totals.EnergyBalance,
		ListedEnergy:  totals.ListedEnergy,
		WalletBalance: totals.WalletBalance,
		EntryTotal:    totals.EntryAmount,
		SettlementNet: totals.SettlementNet,
		Accounts:      totals.AccountCount,
		Trades:        totals.TradeCount,
	}

	// Energy only enters through listings; trades move it between accounts.
	if !totals.EnergyBalance.Equal(totals.ListedEnergy) {
		report.Violations = append(report.Violations,
			fmt.Sprintf("energy balances %s differ from listed energy %s", totals.EnergyBalance, totals.ListedEnergy))
	}

	if !totals.WalletBalance.Equal(totals.EntryAmount) {
		report.Violations = append(report.Violations,
			fmt.Sprintf("wallet balances %s differ from entry total %s", totals.WalletBalance, totals.EntryAmount))
	}

	if !totals.SettlementNet.IsZero() {
		report.Violations = append(report.Violations,
			fmt.Sprintf("settlement entries net to %s", totals.SettlementNet))
	}

	if totals.TradeCount != totals.MaxSequence {
		report.Violations = append(report.Violations,
			fmt.Sprintf("trade count %d differs from last sequence %d", totals.TradeCount, totals.MaxSequence))
	}

	if totals.UnsetWithEnergy > 0 {
		report.Violations = append(report.Violations,
			fmt.Sprintf("%d unregistered accounts hold energy", totals.UnsetWithEnergy))
	}

	report.Consistent = len(report.Violations) == 0
	if !report.Consistent {
		return report, domain.ErrInconsistentLedger
	}

	return report, nil
}
