package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
)

// WalletUseCase handles value deposits and wallet reads.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		retrier:    retrierOrDefault(retrier),
		metrics:    metrics,
	}
}

// Deposit credits amount to the identity's wallet, creating it if needed.
func (uc *WalletUseCase) Deposit(ctx context.Context, identity string, amount uint64) (*domain.Wallet, error) {
	if err := domain.ValidateIdentity(identity); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var wallet *domain.Wallet

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		wallet, err = uc.depositTx(ctx, identity, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Deposits.Inc()
	}

	return wallet, nil
}

func (uc *WalletUseCase) depositTx(ctx context.Context, identity string, amount uint64) (*domain.Wallet, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallets, err := uc.walletRepo.GetByIDsForUpdate(txCtx, tx, []string{identity})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var wallet *domain.Wallet
	if len(wallets) == 1 {
		wallet = wallets[0]
	} else {
		wallet = domain.NewEmptyWallet(identity)
		wallet.CreatedAt = now
		wallet.UpdatedAt = now

		if err := uc.walletRepo.Create(txCtx, tx, wallet); err != nil {
			return nil, err
		}
	}

	err = postWalletEntry(txCtx, tx, uc.walletRepo, uc.entryRepo, uc.idGen, wallet, domain.EntryKindDeposit, domain.Value(amount), "", now)
	if err != nil {
		return nil, err
	}

	event := domain.ValueDepositedEvent{
		Identity: identity,
		Amount:   amount,
		Balance:  wallet.Balance.String(),
	}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   identity,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeValueDeposited,
		Payload:       event.Payload(),
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, outboxEvent); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet returns the identity's wallet, or an empty one if it never held value.
func (uc *WalletUseCase) GetWallet(ctx context.Context, identity string) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, identity)
	if errors.Is(err, domain.ErrWalletNotFound) {
		return domain.NewEmptyWallet(identity), nil
	}
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// ListEntriesInput represents input for listing wallet entries.
type ListEntriesInput struct {
	Identity string
	Limit    int
	Offset   int
}

// ListEntries lists wallet movements, newest first.
func (uc *WalletUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.GetByIdentity(ctx, input.Identity, limit, offset)
}

// postWalletEntry records a signed movement on wallet, persists the new
// balance and advances wallet in place.
func postWalletEntry(
	ctx context.Context,
	tx Transaction,
	walletRepo WalletRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	wallet *domain.Wallet,
	kind domain.EntryKind,
	amount decimal.Decimal,
	tradeID string,
	now time.Time,
) error {
	newBalance := wallet.Balance.Add(amount)

	entry := &domain.Entry{
		ID:              idGen.Generate(),
		Identity:        wallet.Identity,
		TradeID:         tradeID,
		Kind:            kind,
		Amount:          amount,
		PreviousBalance: wallet.Balance,
		CurrentBalance:  newBalance,
		WalletVersion:   wallet.Version + 1,
		CreatedAt:       now,
	}

	if err := entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	if err := walletRepo.UpdateBalance(ctx, tx, wallet.Identity, newBalance, now); err != nil {
		return err
	}

	wallet.Balance = newBalance
	wallet.Version++
	wallet.UpdatedAt = now

	return nil
}

// WalletReconciliation compares a wallet's stored balance with its entry trail.
type WalletReconciliation struct {
	CheckedAt       time.Time       `json:"checked_at"`
	Identity        string          `json:"identity"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	EntryBalance    decimal.Decimal `json:"entry_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Reconciled      bool            `json:"reconciled"`
}

// Reconcile checks that the wallet balance equals the running balance of its
// most recent entry.
func (uc *WalletUseCase) Reconcile(ctx context.Context, identity string) (*WalletReconciliation, error) {
	wallet, err := uc.GetWallet(ctx, identity)
	if err != nil {
		return nil, err
	}

	latest, err := uc.entryRepo.GetByIdentity(ctx, identity, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for %s: %w", identity, err)
	}

	entryBalance := decimal.Zero
	if len(latest) == 1 {
		entryBalance = latest[0].CurrentBalance
	}

	diff := wallet.Balance.Sub(entryBalance)

	return &WalletReconciliation{
		CheckedAt:       time.Now().UTC(),
		Identity:        identity,
		RecordedBalance: wallet.Balance,
		EntryBalance:    entryBalance,
		Difference:      diff,
		Reconciled:      diff.IsZero(),
	}, nil
}
