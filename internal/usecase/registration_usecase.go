package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
)

// RegistrationUseCase grants the one-time prosumer or consumer role.
type RegistrationUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	accounts    *AccountCache
	metrics     *metrics.Metrics
}

// NewRegistrationUseCase creates a new RegistrationUseCase.
func NewRegistrationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	accounts *AccountCache,
	metrics *metrics.Metrics,
) *RegistrationUseCase {
	return &RegistrationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrierOrDefault(retrier),
		accounts:    accounts,
		metrics:     metrics,
	}
}

// RegisterAsProsumer registers identity as a seller.
func (uc *RegistrationUseCase) RegisterAsProsumer(ctx context.Context, identity string) (*domain.RegisteredEvent, error) {
	return uc.register(ctx, identity, domain.RoleProsumer)
}

// RegisterAsConsumer registers identity as a buyer.
func (uc *RegistrationUseCase) RegisterAsConsumer(ctx context.Context, identity string) (*domain.RegisteredEvent, error) {
	return uc.register(ctx, identity, domain.RoleConsumer)
}

func (uc *RegistrationUseCase) register(ctx context.Context, identity string, role domain.Role) (*domain.RegisteredEvent, error) {
	if err := domain.ValidateIdentity(identity); err != nil {
		return nil, err
	}

	var event *domain.RegisteredEvent

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		event, err = uc.registerTx(ctx, identity, role)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.accounts.refresh(ctx, uc.accountRepo, identity)

	if uc.metrics != nil {
		uc.metrics.Registrations.WithLabelValues(role.String()).Inc()
	}

	return event, nil
}

func (uc *RegistrationUseCase) registerTx(ctx context.Context, identity string, role domain.Role) (*domain.RegisteredEvent, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, identity)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	// Accounts are only stored by a registration, so any row already holds a role.
	if account != nil {
		return nil, domain.ErrAlreadyRegistered
	}

	now := time.Now().UTC()
	account = domain.NewUnsetAccount(identity)
	if err := account.Register(role); err != nil {
		return nil, err
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.RegisteredEvent{Identity: identity, Role: role}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   identity,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeRegistered,
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
