package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iho/energyledger/internal/adapter/repository/memory"
	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
	"github.com/iho/energyledger/internal/usecase"
)

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

// testLedger wires every use case to one in-memory store.
type testLedger struct {
	store        *memory.Store
	metrics      *metrics.Metrics
	registration *usecase.RegistrationUseCase
	listing      *usecase.ListingUseCase
	settlement   *usecase.SettlementUseCase
	wallets      *usecase.WalletUseCase
	ledger       *usecase.LedgerUseCase
	outbox       *memory.OutboxRepository
	entries      *memory.EntryRepository
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	return newTestLedgerWithCache(t, nil)
}

func newTestLedgerWithCache(t *testing.T, cache usecase.Cache) *testLedger {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	accountRepo := memory.NewAccountRepository(store)
	listingRepo := memory.NewListingRepository(store)
	tradeRepo := memory.NewTradeRepository(store)
	walletRepo := memory.NewWalletRepository(store)
	entryRepo := memory.NewEntryRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	ids := &seqIDs{}
	m := metrics.New(prometheus.NewRegistry())
	accounts := usecase.NewAccountCache(cache, 0, m)

	return &testLedger{
		store:        store,
		metrics:      m,
		registration: usecase.NewRegistrationUseCase(txm, accountRepo, outboxRepo, ids, nil, accounts, m),
		listing:      usecase.NewListingUseCase(txm, accountRepo, listingRepo, outboxRepo, ids, nil, accounts, m),
		settlement:   usecase.NewSettlementUseCase(txm, accountRepo, walletRepo, entryRepo, tradeRepo, outboxRepo, ids, nil, accounts, m),
		wallets:      usecase.NewWalletUseCase(txm, walletRepo, entryRepo, outboxRepo, ids, nil, m),
		ledger:       usecase.NewLedgerUseCase(accountRepo, tradeRepo, ledgerRepo, accounts),
		outbox:       outboxRepo,
		entries:      entryRepo,
	}
}

func (l *testLedger) prosumer(t *testing.T, id string, energy uint64) {
	t.Helper()
	ctx := context.Background()

	_, err := l.registration.RegisterAsProsumer(ctx, id)
	require.NoError(t, err)

	if energy > 0 {
		_, err = l.listing.AddEnergy(ctx, id, energy)
		require.NoError(t, err)
	}
}

func (l *testLedger) consumer(t *testing.T, id string, deposit uint64) {
	t.Helper()
	ctx := context.Background()

	_, err := l.registration.RegisterAsConsumer(ctx, id)
	require.NoError(t, err)

	if deposit > 0 {
		_, err = l.wallets.Deposit(ctx, id, deposit)
		require.NoError(t, err)
	}
}

// snapshot captures everything a failed operation must leave untouched.
type snapshot struct {
	Accounts map[string]domain.Account
	Wallets  map[string]string
	Trades   []domain.Trade
	Entries  map[string]int
	Events   int
}

func (l *testLedger) snapshot(t *testing.T, identities ...string) snapshot {
	t.Helper()
	ctx := context.Background()

	s := snapshot{
		Accounts: make(map[string]domain.Account),
		Wallets:  make(map[string]string),
		Entries:  make(map[string]int),
	}

	for _, id := range identities {
		acc, err := l.ledger.GetAccount(ctx, id)
		require.NoError(t, err)
		s.Accounts[id] = *acc

		w, err := l.wallets.GetWallet(ctx, id)
		require.NoError(t, err)
		s.Wallets[id] = w.Balance.String()

		entries, err := l.entries.GetByIdentity(ctx, id, 1000, 0)
		require.NoError(t, err)
		s.Entries[id] = len(entries)
	}

	trades, err := l.ledger.GetTradeHistory(ctx)
	require.NoError(t, err)
	for _, tr := range trades {
		s.Trades = append(s.Trades, *tr)
	}

	events, err := l.outbox.GetUnpublished(ctx, 100000)
	require.NoError(t, err)
	s.Events = len(events)

	return s
}
