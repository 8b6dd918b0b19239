package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// lateFeePercent is applied once to the installment amount when the due
// date passes with no post-due payment on record. Any payment made
// strictly after the due date cancels the fee entirely.
var lateFeePercent = decimal.RequireFromString("0.01")

// InstallmentStatus is the read-only per-installment view consumed by
// callers and by the allocators.
type InstallmentStatus struct {
	InstallmentID        string
	Number               int
	DueDate              time.Time
	HasLateFee           bool
	LateFeeAmount        decimal.Decimal
	RemainingInstallment decimal.Decimal
	RemainingInterest    decimal.Decimal
	RemainingPrincipal   decimal.Decimal
	PendingTotal         decimal.Decimal
	Settled              bool
}

// AssessInstallment derives the current fee and balance state of one
// installment from its payment history. Pure function of its inputs.
func AssessInstallment(inst *Installment, payments []*Payment, asOf time.Time) InstallmentStatus {
	paidInterest := decimal.Zero
	paidPrincipal := decimal.Zero
	paidFee := decimal.Zero
	paidAfterDue := false

	for _, p := range payments {
		paidInterest = paidInterest.Add(p.InterestPaid)
		paidPrincipal = paidPrincipal.Add(p.PrincipalPaid)
		paidFee = paidFee.Add(p.LateFeePaid)

		if p.CreatedAt.After(inst.DueDate) {
			paidAfterDue = true
		}
	}

	remInterest := floorZero(inst.InterestAmount.Sub(paidInterest))
	remPrincipal := floorZero(inst.PrincipalAmount.Sub(paidPrincipal))
	remaining := floorZero(inst.Amount.Sub(paidInterest).Sub(paidPrincipal))

	fee := decimal.Zero
	if asOf.After(inst.DueDate) && !paidAfterDue && !IsSettled(remaining) {
		fee = floorZero(inst.Amount.Mul(lateFeePercent).RoundBank(moneyScale).Sub(paidFee))
	}

	pending := remaining.Add(fee)

	return InstallmentStatus{
		InstallmentID:        inst.ID,
		Number:               inst.Number,
		DueDate:              inst.DueDate,
		HasLateFee:           fee.IsPositive(),
		LateFeeAmount:        fee,
		RemainingInstallment: remaining,
		RemainingInterest:    remInterest,
		RemainingPrincipal:   remPrincipal,
		PendingTotal:         pending,
		Settled:              IsSettled(pending),
	}
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}
