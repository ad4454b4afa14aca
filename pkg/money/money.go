package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are carried as decimals with two-digit scale; arithmetic on ledger
// columns happens inside the database so Go never accumulates rounding drift.

// Parse converts a decimal string into a normalized monetary amount.
func Parse(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", value)
	}
	return amount.Round(2), nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}

// ClampZero returns zero when amount is negative, amount otherwise.
func ClampZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
