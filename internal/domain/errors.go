package domain

import "errors"

var (
	// Registration errors
	ErrAlreadyRegistered = errors.New("identity already registered")
	ErrInvalidRole       = errors.New("invalid role")

	// Role gate errors
	ErrNotProsumer       = errors.New("not a prosumer")
	ErrNotConsumer       = errors.New("not a consumer")
	ErrSellerNotProsumer = errors.New("seller not a prosumer")

	// Settlement errors
	ErrInsufficientPayment = errors.New("not enough payment sent")
	ErrInsufficientEnergy  = errors.New("not enough energy")
	ErrPriceOverflow       = errors.New("total price overflows")
	ErrEnergyOverflow      = errors.New("energy balance overflows")
	ErrInsufficientFunds   = errors.New("wallet balance below payment value")

	// Input errors
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidIdentity = errors.New("invalid identity")

	// Lookup errors
	ErrAccountNotFound = errors.New("account not found")
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrTradeNotFound   = errors.New("trade not found")

	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrAlreadyRegistered, "already_registered"},
	{ErrInvalidRole, "invalid_role"},
	{ErrNotProsumer, "not_prosumer"},
	{ErrNotConsumer, "not_consumer"},
	{ErrSellerNotProsumer, "seller_not_prosumer"},
	{ErrInsufficientPayment, "insufficient_payment"},
	{ErrInsufficientEnergy, "insufficient_energy"},
	{ErrPriceOverflow, "price_overflow"},
	{ErrEnergyOverflow, "energy_overflow"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInvalidIdentity, "invalid_identity"},
	{ErrAccountNotFound, "account_not_found"},
	{ErrWalletNotFound, "wallet_not_found"},
	{ErrTradeNotFound, "trade_not_found"},
	{ErrInconsistentLedger, "inconsistent_ledger"},
}

// ErrorCode returns the stable machine-readable code for a domain error,
// or "internal" when err is not one.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
