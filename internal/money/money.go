// Package money pins the fixed-point conventions used throughout the
// accounting engine. All monetary and quantity values are
// decimal.Decimal; binary floating point never touches a ledger figure.
//
// Conventions:
//   - amount columns persist as canonical decimal strings (text), so a
//     value reads back exactly as written on every dialect;
//   - division (average cost, NAV per unit) is full-precision decimal
//     division, never pre-rounded; rounding happens only at the
//     presentation boundary.
package money

import "github.com/shopspring/decimal"

// Zero is the shared decimal zero.
var Zero = decimal.Zero

// Div divides a by b at full decimal precision. A zero divisor yields
// zero, which is the degenerate "position emptied" case for average
// cost rather than an error.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Round2 rounds half-up to 2 fractional digits for money presentation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// IsNegative reports whether d is strictly less than zero.
func IsNegative(d decimal.Decimal) bool {
	return d.Sign() < 0
}
