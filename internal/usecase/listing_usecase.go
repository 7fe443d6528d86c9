package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
)

// ListingUseCase credits energy to prosumers.
type ListingUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	listingRepo ListingRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	accounts    *AccountCache
	metrics     *metrics.Metrics
}

// NewListingUseCase creates a new ListingUseCase.
func NewListingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	listingRepo ListingRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	accounts *AccountCache,
	metrics *metrics.Metrics,
) *ListingUseCase {
	return &ListingUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrierOrDefault(retrier),
		accounts:    accounts,
		metrics:     metrics,
	}
}

// AddEnergy adds amount units to the caller's sellable balance.
func (uc *ListingUseCase) AddEnergy(ctx context.Context, identity string, amount uint64) (*domain.EnergyListedEvent, error) {
	if err := domain.ValidateIdentity(identity); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var event *domain.EnergyListedEvent

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		event, err = uc.addEnergyTx(ctx, identity, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.accounts.refresh(ctx, uc.accountRepo, identity)

	if uc.metrics != nil {
		uc.metrics.ListingsCreated.Inc()
		uc.metrics.EnergyListed.Add(float64(amount))
	}

	return event, nil
}

func (uc *ListingUseCase) addEnergyTx(ctx context.Context, identity string, amount uint64) (*domain.EnergyListedEvent, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, identity)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrNotProsumer
	}
	if err != nil {
		return nil, err
	}

	if err := account.ValidateListing(amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.UpdateEnergyBalance(txCtx, tx, identity, account.ApplyEnergyCredit(amount), now); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		ID:        uc.idGen.Generate(),
		Identity:  identity,
		Amount:    amount,
		CreatedAt: now,
	}
	if err := uc.listingRepo.Create(txCtx, tx, listing); err != nil {
		return nil, err
	}

	event := &domain.EnergyListedEvent{Identity: identity, Amount: amount}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   identity,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeEnergyListed,
		Payload:       event.Payload(),
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, outboxEvent); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return event, nil
}
