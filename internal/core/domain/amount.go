package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are arbitrary-precision integers in the ledger's native unit (e.g. wei).
// decimal.Decimal is used for its big.Int backed arithmetic; fractional values are rejected.

// IsWholePositive reports whether d is an integer greater than zero.
func IsWholePositive(d decimal.Decimal) bool {
	return d.IsPositive() && d.IsInteger()
}

// IsWholeNonNegative reports whether d is an integer greater than or equal to zero.
func IsWholeNonNegative(d decimal.Decimal) bool {
	return !d.IsNegative() && d.IsInteger()
}

// ParseAmount parses a base-10 integer amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number: %w", s, err)
	}
	if !d.IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %q must be a whole number of the ledger unit", s)
	}
	return d, nil
}

// SumAmounts adds up the amounts of the given donations.
func SumAmounts(donations []Donation) decimal.Decimal {
	total := decimal.Zero
	for _, d := range donations {
		total = total.Add(d.Amount)
	}
	return total
}
