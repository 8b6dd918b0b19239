package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleRow is one generated amortization row.
type ScheduleRow struct {
	Number           int
	DueDate          time.Time
	Amount           decimal.Decimal
	PrincipalAmount  decimal.Decimal
	InterestAmount   decimal.Decimal
	RemainingBalance decimal.Decimal
}

const (
	daysPerPeriod = 30
	dueHourUTC    = 12
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

const (
	moneyScale   = int32(2)
	periodsScale = int32(12)
)

// GenerateSchedule produces the fixed-installment schedule for a loan.
// Due dates advance exactly 30 calendar days per period, pinned to
// noon UTC so the calendar day survives timezone conversion. The final
// row absorbs all rounding residue: its principal component is forced
// so that the principal components sum to the loan principal exactly,
// and its installment amount is re-derived as principal + interest.
func GenerateSchedule(principal, annualRate decimal.Decimal, termCount int, startDate time.Time) ([]ScheduleRow, error) {
	if err := ValidateLoanTerms(principal, annualRate, termCount); err != nil {
		return nil, err
	}

	periodRate := annualRate.DivRound(twelve, periodsScale)
	installment := fixedInstallment(principal, periodRate, termCount)

	rows := make([]ScheduleRow, 0, termCount)
	balance := principal
	paidPrincipal := decimal.Zero

	for n := 1; n <= termCount; n++ {
		interest := balance.Mul(periodRate).RoundBank(moneyScale)

		var principalPart decimal.Decimal
		if n == termCount {
			principalPart = principal.Sub(paidPrincipal)
		} else {
			principalPart = installment.Sub(interest)
		}

		balance = balance.Sub(principalPart)
		paidPrincipal = paidPrincipal.Add(principalPart)

		amount := installment
		remaining := balance
		if n == termCount {
			amount = principalPart.Add(interest)
			remaining = decimal.Zero
		}

		rows = append(rows, ScheduleRow{
			Number:           n,
			DueDate:          dueDate(startDate, n),
			Amount:           amount,
			PrincipalAmount:  principalPart,
			InterestAmount:   interest,
			RemainingBalance: remaining,
		})
	}

	return rows, nil
}

// fixedInstallment applies the annuity formula, falling back to a
// straight principal split for zero-rate loans.
func fixedInstallment(principal, periodRate decimal.Decimal, termCount int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termCount))

	if periodRate.IsZero() {
		return principal.DivRound(n, moneyScale)
	}

	factor := one.Add(periodRate).Pow(n)

	return principal.
		Mul(periodRate).
		Mul(factor).
		DivRound(factor.Sub(one), moneyScale)
}

// dueDate computes the due date of period n: start + 30n days at noon UTC.
func dueDate(start time.Time, n int) time.Time {
	y, m, d := start.Date()
	anchored := time.Date(y, m, d, dueHourUTC, 0, 0, 0, time.UTC)

	return anchored.AddDate(0, 0, daysPerPeriod*n)
}
