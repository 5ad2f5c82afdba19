// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity represents a stock or order quantity.
// Conversion factors produce non-terminating fractions (1/3 crate), so
// quantities share the same arbitrary-precision representation as Money.
type Quantity = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use MoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func MoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return MustMoney(s)
}

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// QuantityScale is the fractional precision persisted for quantities,
// matching Postgres NUMERIC(15,4) columns.
const QuantityScale int32 = 4

// RoundQuantity rounds q to the persisted quantity precision.
func RoundQuantity(q Quantity) Quantity {
	return q.Round(QuantityScale)
}

// RoundMoney rounds m to two fractional digits for display totals.
func RoundMoney(m Money) Money {
	return m.Round(2)
}
