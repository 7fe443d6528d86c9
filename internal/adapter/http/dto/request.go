package dto

import (
	"github.com/iho/energyledger/internal/usecase"
)

// AddEnergyRequest represents a request to list energy for sale.
type AddEnergyRequest struct {
	Amount uint64 `json:"amount"`
}

// BuyEnergyRequest represents a purchase from a prosumer. The buyer is the
// authenticated caller and never comes from the body.
type BuyEnergyRequest struct {
	Seller       string `json:"seller"`
	Amount       uint64 `json:"amount"`
	PricePerUnit uint64 `json:"price_per_unit"`
	PaymentValue uint64 `json:"payment_value"`
}

// ToUseCaseInput converts to use case input.
func (r *BuyEnergyRequest) ToUseCaseInput(buyer string) usecase.BuyEnergyInput {
	return usecase.BuyEnergyInput{
		Buyer:        buyer,
		Seller:       r.Seller,
		Amount:       r.Amount,
		PricePerUnit: r.PricePerUnit,
		PaymentValue: r.PaymentValue,
	}
}

// DepositRequest represents a wallet top-up.
type DepositRequest struct {
	Amount uint64 `json:"amount"`
}
