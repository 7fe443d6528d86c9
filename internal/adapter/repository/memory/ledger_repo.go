package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Totals aggregates balances, listings, entries and trades.
func (r *LedgerRepository) Totals(ctx context.Context) (*usecase.LedgerTotals, error) {
	totals := &usecase.LedgerTotals{
		EnergyBalance: decimal.Zero,
		ListedEnergy:  decimal.Zero,
		WalletBalance: decimal.Zero,
		EntryAmount:   decimal.Zero,
		SettlementNet: decimal.Zero,
	}

	err := r.store.read(ctx, func() {
		for _, acc := range r.store.accounts {
			totals.AccountCount++
			totals.EnergyBalance = totals.EnergyBalance.Add(domain.Value(acc.EnergyBalance))
			if acc.Role == domain.RoleUnset && acc.EnergyBalance != 0 {
				totals.UnsetWithEnergy++
			}
		}

		for _, l := range r.store.listings {
			totals.ListedEnergy = totals.ListedEnergy.Add(domain.Value(l.Amount))
		}

		for _, w := range r.store.wallets {
			totals.WalletBalance = totals.WalletBalance.Add(w.Balance)
		}

		for _, e := range r.store.entries {
			totals.EntryAmount = totals.EntryAmount.Add(e.Amount)
			if e.Kind.IsSettlement() {
				totals.SettlementNet = totals.SettlementNet.Add(e.Amount)
			}
		}

		totals.TradeCount = int64(len(r.store.trades))
		for _, t := range r.store.trades {
			if t.Sequence > totals.MaxSequence {
				totals.MaxSequence = t.Sequence
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return totals, nil
}
