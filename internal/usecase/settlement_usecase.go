package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
)

// SettlementUseCase executes atomic energy purchases.
type SettlementUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	walletRepo  WalletRepository
	entryRepo   EntryRepository
	tradeRepo   TradeRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	accounts    *AccountCache
	metrics     *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	walletRepo WalletRepository,
	entryRepo EntryRepository,
	tradeRepo TradeRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
	accounts *AccountCache,
	metrics *metrics.Metrics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		entryRepo:   entryRepo,
		tradeRepo:   tradeRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     retrierOrDefault(retrier),
		accounts:    accounts,
		metrics:     metrics,
	}
}

// BuyEnergyInput represents a purchase request. PaymentValue is the value the
// buyer attaches; anything above the total price is refunded.
type BuyEnergyInput struct {
	Buyer        string
	Seller       string
	Amount       uint64
	PricePerUnit uint64
	PaymentValue uint64
}

// BuyEnergy settles a purchase of Amount units from Seller. Either every
// effect is committed or none is.
func (uc *SettlementUseCase) BuyEnergy(ctx context.Context, input BuyEnergyInput) (*domain.EnergyPurchasedEvent, error) {
	start := time.Now()

	event, err := uc.buyEnergy(ctx, input)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.SettlementRejections.WithLabelValues(domain.ErrorCode(err)).Inc()
		}
		return nil, err
	}

	uc.accounts.refresh(ctx, uc.accountRepo, input.Buyer, input.Seller)

	if uc.metrics != nil {
		uc.metrics.TradesSettled.Inc()
		uc.metrics.TradeEnergy.Observe(float64(event.Amount))
		uc.metrics.TradeValue.Observe(float64(event.TotalPrice))
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}

	return event, nil
}

func (uc *SettlementUseCase) buyEnergy(ctx context.Context, input BuyEnergyInput) (*domain.EnergyPurchasedEvent, error) {
	if err := domain.ValidateIdentity(input.Buyer); err != nil {
		return nil, err
	}

	if err := domain.ValidateIdentity(input.Seller); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var event *domain.EnergyPurchasedEvent

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		event, err = uc.settleTx(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (uc *SettlementUseCase) settleTx(ctx context.Context, input BuyEnergyInput) (*domain.EnergyPurchasedEvent, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock both parties in sorted order (deadlock prevention)
	identities := sortedUnique(input.Buyer, input.Seller)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, identities)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.Identity] = a
	}

	buyer := accountMap[input.Buyer]
	seller := accountMap[input.Seller]

	totalPrice, err := validatePurchase(buyer, seller, input)
	if err != nil {
		return nil, err
	}

	wallets, err := uc.walletRepo.GetByIDsForUpdate(txCtx, tx, identities)
	if err != nil {
		return nil, err
	}

	walletMap := make(map[string]*domain.Wallet, len(wallets))
	for _, w := range wallets {
		walletMap[w.Identity] = w
	}

	now := time.Now().UTC()
	tradeID := uc.idGen.Generate()

	if err := uc.transferValue(txCtx, tx, walletMap, input, totalPrice, tradeID, now); err != nil {
		return nil, err
	}

	// Energy moves after value so a wallet failure leaves balances untouched.
	if err := uc.accountRepo.UpdateEnergyBalance(txCtx, tx, seller.Identity, seller.ApplyEnergyDebit(input.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateEnergyBalance(txCtx, tx, buyer.Identity, buyer.ApplyEnergyCredit(input.Amount), now); err != nil {
		return nil, err
	}

	trade := &domain.Trade{
		ID:           tradeID,
		Prosumer:     input.Seller,
		Consumer:     input.Buyer,
		Amount:       input.Amount,
		PricePerUnit: input.PricePerUnit,
		TotalPrice:   totalPrice,
		Timestamp:    now,
	}
	if err := uc.tradeRepo.Create(txCtx, tx, trade); err != nil {
		return nil, err
	}

	event := &domain.EnergyPurchasedEvent{
		Buyer:        input.Buyer,
		Seller:       input.Seller,
		TradeID:      trade.ID,
		Amount:       input.Amount,
		PricePerUnit: input.PricePerUnit,
		TotalPrice:   totalPrice,
	}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   trade.ID,
		AggregateType: domain.AggregateTypeTrade,
		EventType:     domain.EventTypeEnergyPurchased,
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

// validatePurchase applies the purchase checks in their fixed order and
// returns the total price. Missing accounts count as unregistered.
func validatePurchase(buyer, seller *domain.Account, input BuyEnergyInput) (uint64, error) {
	if buyer == nil || buyer.Role != domain.RoleConsumer {
		return 0, domain.ErrNotConsumer
	}

	totalPrice, err := domain.TotalPrice(input.Amount, input.PricePerUnit)
	if err != nil {
		return 0, err
	}

	if input.PaymentValue < totalPrice {
		return 0, domain.ErrInsufficientPayment
	}

	if seller == nil || seller.Role != domain.RoleProsumer {
		return 0, domain.ErrSellerNotProsumer
	}

	if err := seller.ValidateEnergyDebit(input.Amount); err != nil {
		return 0, err
	}

	if err := buyer.ValidateEnergyCredit(input.Amount); err != nil {
		return 0, err
	}

	return totalPrice, nil
}

// transferValue debits the attached payment from the buyer, credits the seller
// exactly totalPrice and refunds the excess to the buyer.
func (uc *SettlementUseCase) transferValue(
	ctx context.Context,
	tx Transaction,
	walletMap map[string]*domain.Wallet,
	input BuyEnergyInput,
	totalPrice uint64,
	tradeID string,
	now time.Time,
) error {
	payment := domain.Value(input.PaymentValue)
	proceeds := domain.Value(totalPrice)
	refund := domain.Value(input.PaymentValue - totalPrice)

	if payment.IsZero() {
		return nil
	}

	buyerWallet := walletMap[input.Buyer]
	if buyerWallet == nil {
		return domain.ErrInsufficientFunds
	}

	if err := buyerWallet.ValidateDebit(payment); err != nil {
		return err
	}

	if err := uc.postEntry(ctx, tx, buyerWallet, domain.EntryKindPayment, payment.Neg(), tradeID, now); err != nil {
		return err
	}

	if !proceeds.IsZero() {
		sellerWallet := walletMap[input.Seller]
		if sellerWallet == nil {
			sellerWallet = domain.NewEmptyWallet(input.Seller)
			sellerWallet.CreatedAt = now
			sellerWallet.UpdatedAt = now

			if err := uc.walletRepo.Create(ctx, tx, sellerWallet); err != nil {
				return err
			}
		}

		if err := uc.postEntry(ctx, tx, sellerWallet, domain.EntryKindProceeds, proceeds, tradeID, now); err != nil {
			return err
		}
	}

	if !refund.IsZero() {
		if err := uc.postEntry(ctx, tx, buyerWallet, domain.EntryKindRefund, refund, tradeID, now); err != nil {
			return err
		}
	}

	return nil
}

// postEntry records a signed movement on wallet and updates its balance.
func (uc *SettlementUseCase) postEntry(
	ctx context.Context,
	tx Transaction,
	wallet *domain.Wallet,
	kind domain.EntryKind,
	amount decimal.Decimal,
	tradeID string,
	now time.Time,
) error {
	return postWalletEntry(ctx, tx, uc.walletRepo, uc.entryRepo, uc.idGen, wallet, kind, amount, tradeID, now)
}

func sortedUnique(ids ...string) []string {
	seen := make(map[string]bool, len(ids))

	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	sort.Strings(out)

	return out
}
