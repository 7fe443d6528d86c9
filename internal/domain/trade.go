package domain

import (
	"math/bits"
	"time"
)

// Trade is the immutable record of one completed settlement.
type Trade struct {
	Timestamp    time.Time
	ID           string
	Prosumer     string
	Consumer     string
	Sequence     int64
	Amount       uint64
	PricePerUnit uint64
	TotalPrice   uint64
}

// TotalPrice multiplies amount by pricePerUnit, failing with ErrPriceOverflow
// when the product does not fit in 64 bits.
func TotalPrice(amount, pricePerUnit uint64) (uint64, error) {
	hi, lo := bits.Mul64(amount, pricePerUnit)
	if hi != 0 {
		return 0, ErrPriceOverflow
	}
	return lo, nil
}

// Listing records one successful addEnergy call.
type Listing struct {
	CreatedAt time.Time
	ID        string
	Identity  string
	Amount    uint64
}
