package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount    = errors.New("amounts must not be negative")
	ErrAdvanceExceedsAll = errors.New("advance amount cannot exceed total amount")
	ErrAmountPrecision   = errors.New("amounts must have at most 2 decimal places")
	ErrAmountTooLarge    = errors.New("amounts must have at most 12 integer digits")
)

// maxAmount is the first value NUMERIC(14, 2) cannot hold.
var maxAmount = decimal.New(1, 12)

// Payment is the money captured when a client pays an advance.
type Payment struct {
	Total   decimal.Decimal
	Advance decimal.Decimal
}

// Due is total minus advance, exact to the paisa.
func (p Payment) Due() decimal.Decimal {
	return p.Total.Sub(p.Advance)
}

// Validate enforces 0 <= advance <= total, with both amounts storable
// exactly as NUMERIC(14, 2) so due is the same before and after storage.
func (p Payment) Validate() error {
	if p.Total.IsNegative() || p.Advance.IsNegative() {
		return ErrNegativeAmount
	}
	for _, amount := range []decimal.Decimal{p.Total, p.Advance} {
		if !amount.Equal(amount.Round(2)) {
			return ErrAmountPrecision
		}
		if amount.GreaterThanOrEqual(maxAmount) {
			return ErrAmountTooLarge
		}
	}
	if p.Advance.GreaterThan(p.Total) {
		return ErrAdvanceExceedsAll
	}
	return nil
}
