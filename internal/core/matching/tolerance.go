// Package matching implements the three-pass matcher that pairs bank
// transactions with goal transactions. Everything in this package is pure:
// no storage, no clocks, no logging.
package matching

import "github.com/shopspring/decimal"

// Tolerance decides whether two amounts are close enough to be the same money movement.
type Tolerance struct {
	Percent decimal.Decimal // share of the larger absolute amount, 0.01 = 1%
	Floor   decimal.Decimal // minimum band in minor currency units
}

// DefaultTolerance is 1% of the larger amount with a floor of 1000 units.
func DefaultTolerance() Tolerance {
	return Tolerance{
		Percent: decimal.NewFromFloat(0.01),
		Floor:   decimal.NewFromInt(1000),
	}
}

// Band returns the largest acceptable difference between a and b.
func (t Tolerance) Band(a, b decimal.Decimal) decimal.Decimal {
	larger := decimal.Max(a.Abs(), b.Abs())
	return decimal.Max(t.Percent.Mul(larger), t.Floor)
}

// Within reports whether |a-b| <= max(Percent*max(|a|,|b|), Floor).
// The result does not depend on argument order.
func (t Tolerance) Within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(t.Band(a, b))
}
