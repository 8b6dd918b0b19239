package domain

import "github.com/shopspring/decimal"

// Monetary policy constants.
var (
	// CashStep is the smallest settleable cash denomination.
	CashStep = decimal.RequireFromString("0.10")

	// SettleTolerance is the residue below which an installment counts as fully paid.
	SettleTolerance = decimal.RequireFromString("0.05")

	// CloseTolerance is the maximum allowed difference between counted and
	// computed balance when closing a cash session.
	CloseTolerance = decimal.RequireFromString("0.01")

	// MinDigitalAmount is the floor for digital payment methods.
	MinDigitalAmount = decimal.RequireFromString("2.00")

	two = decimal.NewFromInt(2)
	ten = decimal.NewFromInt(10)
)

// RoundToCash maps an amount to the nearest multiple of 0.10.
// Remainders under 0.05 are waived (rounded down), remainders over 0.05
// round up, and an exact 0.05 breaks the tie on the tenths digit:
// even rounds down, odd rounds up.
func RoundToCash(amount decimal.Decimal) decimal.Decimal {
	tenths := amount.Mul(ten)
	floor := tenths.Floor()
	frac := tenths.Sub(floor)

	half := decimal.RequireFromString("0.5")
	switch {
	case frac.LessThan(half):
		return floor.Div(ten)
	case frac.GreaterThan(half):
		return floor.Add(decimal.NewFromInt(1)).Div(ten)
	}

	// Exact half: round to even tenths digit.
	if floor.Mod(two).IsZero() {
		return floor.Div(ten)
	}

	return floor.Add(decimal.NewFromInt(1)).Div(ten)
}

// IsCashAmount reports whether amount is an exact multiple of 0.10 and
// therefore settleable in cash.
func IsCashAmount(amount decimal.Decimal) bool {
	return amount.Mod(CashStep).IsZero()
}

// IsSettled reports whether a residual amount is within the settle tolerance.
func IsSettled(residual decimal.Decimal) bool {
	return residual.LessThanOrEqual(SettleTolerance)
}
