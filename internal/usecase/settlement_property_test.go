package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

var propertyIdentities = []string{"p1", "p2", "c1", "c2", "u1"}

// TestSettlementProperties drives random operation sequences and checks
// conservation, role immutability and the append-only trade log after each step.
func TestSettlementProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		l := newTestLedger(t)

		roles := make(map[string]domain.Role)
		var listed, tradeCount uint64
		var history []domain.Trade

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(propertyIdentities).Draw(rt, "identity")

			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				_, err := l.registration.RegisterAsProsumer(ctx, id)
				checkRegistration(rt, roles, id, domain.RoleProsumer, err)
			case 1:
				_, err := l.registration.RegisterAsConsumer(ctx, id)
				checkRegistration(rt, roles, id, domain.RoleConsumer, err)
			case 2:
				amount := rapid.Uint64Range(0, 50).Draw(rt, "listAmount")
				_, err := l.listing.AddEnergy(ctx, id, amount)
				if err == nil {
					listed += amount
				} else if amount > 0 && roles[id] == domain.RoleProsumer {
					rt.Fatalf("listing by prosumer failed: %v", err)
				}
			case 3:
				amount := rapid.Uint64Range(1, 1000).Draw(rt, "depositAmount")
				if _, err := l.wallets.Deposit(ctx, id, amount); err != nil {
					rt.Fatalf("deposit failed: %v", err)
				}
			case 4:
				seller := rapid.SampledFrom(propertyIdentities).Draw(rt, "seller")
				input := usecase.BuyEnergyInput{
					Buyer:        id,
					Seller:       seller,
					Amount:       rapid.Uint64Range(0, 30).Draw(rt, "buyAmount"),
					PricePerUnit: rapid.Uint64Range(0, 10).Draw(rt, "price"),
					PaymentValue: rapid.Uint64Range(0, 400).Draw(rt, "payment"),
				}

				before := l.snapshot(t, propertyIdentities...)
				buyerWallet := walletBalance(rt, l, id)
				sellerWallet := walletBalance(rt, l, seller)

				event, err := l.settlement.BuyEnergy(ctx, input)
				if err != nil {
					after := l.snapshot(t, propertyIdentities...)
					if !snapshotsEqual(before, after) {
						rt.Fatalf("failed buy %+v (%v) changed state", input, err)
					}
					continue
				}

				tradeCount++
				total := decimal.NewFromInt(int64(event.TotalPrice))
				if !walletBalance(rt, l, id).Equal(buyerWallet.Sub(total)) {
					rt.Fatalf("buyer wallet must drop by exactly %s", total)
				}
				if !walletBalance(rt, l, seller).Equal(sellerWallet.Add(total)) {
					rt.Fatalf("seller wallet must grow by exactly %s", total)
				}
			}

			trades, err := l.ledger.GetTradeHistory(ctx)
			if err != nil {
				rt.Fatalf("history: %v", err)
			}
			if uint64(len(trades)) != tradeCount {
				rt.Fatalf("expected %d trades, got %d", tradeCount, len(trades))
			}
			for j := range history {
				if *trades[j] != history[j] {
					rt.Fatalf("trade %d changed after append", j)
				}
			}
			history = history[:0]
			for _, tr := range trades {
				history = append(history, *tr)
			}

			var energy uint64
			for _, pid := range propertyIdentities {
				acc, err := l.ledger.GetAccount(ctx, pid)
				if err != nil {
					rt.Fatalf("get account: %v", err)
				}
				if acc.Role != roles[pid] {
					rt.Fatalf("role of %s changed to %s", pid, acc.Role)
				}
				energy += acc.EnergyBalance
			}
			if energy != listed {
				rt.Fatalf("energy not conserved: balances %d, listed %d", energy, listed)
			}

			if _, err := l.ledger.CheckConsistency(ctx); err != nil {
				rt.Fatalf("consistency: %v", err)
			}
		}
	})
}

func checkRegistration(rt *rapid.T, roles map[string]domain.Role, id string, role domain.Role, err error) {
	if roles[id] != domain.RoleUnset {
		if !errors.Is(err, domain.ErrAlreadyRegistered) {
			rt.Fatalf("second registration of %s: expected ErrAlreadyRegistered, got %v", id, err)
		}
		return
	}

	if err != nil {
		rt.Fatalf("first registration of %s failed: %v", id, err)
	}
	roles[id] = role
}

func walletBalance(rt *rapid.T, l *testLedger, id string) decimal.Decimal {
	w, err := l.wallets.GetWallet(context.Background(), id)
	if err != nil {
		rt.Fatalf("get wallet: %v", err)
	}
	return w.Balance
}

func snapshotsEqual(a, b snapshot) bool {
	if len(a.Trades) != len(b.Trades) || a.Events != b.Events {
		return false
	}
	for id, acc := range a.Accounts {
		other := b.Accounts[id]
		if acc.Role != other.Role || acc.EnergyBalance != other.EnergyBalance || acc.Version != other.Version {
			return false
		}
	}
	for id, bal := range a.Wallets {
		if b.Wallets[id] != bal || a.Entries[id] != b.Entries[id] {
			return false
		}
	}
	return true
}
