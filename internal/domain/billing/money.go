package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for costs that cannot be charged.
var ErrInvalidAmount = errors.New("amount must be a positive value with at most two decimal places")

// Stripe rejects unit amounts above eight digits.
const maxMinorUnits = 99_999_999

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit cost (e.g. 500 BDT) to provider minor units (50000).
func ToMinorUnits(cost decimal.Decimal) (int64, error) {
	if !cost.IsPositive() {
		return 0, ErrInvalidAmount
	}

	minor := cost.Mul(hundred)
	if !minor.IsInteger() || minor.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

// ToMajorUnits converts provider minor units back to the display amount.
func ToMajorUnits(minor int64) float64 {
	f, _ := decimal.New(minor, -2).Float64()
	return f
}
