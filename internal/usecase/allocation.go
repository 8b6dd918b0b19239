package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// allocationSlice is the share of one payment applied to one installment.
type allocationSlice struct {
	Status    domain.InstallmentStatus
	Interest  decimal.Decimal
	Principal decimal.Decimal
	LateFee   decimal.Decimal
}

// Total returns interest + principal + late fee of the slice.
func (s allocationSlice) Total() decimal.Decimal {
	return s.Interest.Add(s.Principal).Add(s.LateFee)
}

// SettlesInstallment reports whether the installment is settled once
// this slice lands. The slice is applied now, so any fee currently
// accrued is waived by the payment itself; what must be covered within
// tolerance is the remaining interest and principal, not the
// pre-payment pending total.
func (s allocationSlice) SettlesInstallment() bool {
	return domain.IsSettled(s.Status.RemainingInstallment.Sub(s.Interest).Sub(s.Principal))
}

// allocateWaterfall distributes amount across the given installment
// statuses in order. Within each installment the waterfall is interest,
// then principal, then late fee. Returns the non-empty slices and the
// amount left unallocated.
func allocateWaterfall(statuses []domain.InstallmentStatus, amount decimal.Decimal) ([]allocationSlice, decimal.Decimal) {
	remaining := amount

	var slices []allocationSlice
	for _, st := range statuses {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		if st.Settled {
			continue
		}

		s := allocationSlice{Status: st}
		s.Interest, remaining = takeUpTo(remaining, st.RemainingInterest)
		s.Principal, remaining = takeUpTo(remaining, st.RemainingPrincipal)
		s.LateFee, remaining = takeUpTo(remaining, st.LateFeeAmount)

		if s.Total().IsPositive() {
			slices = append(slices, s)
		}
	}

	return slices, remaining
}

// takeUpTo takes at most limit from available; returns (taken, rest).
func takeUpTo(available, limit decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if limit.LessThanOrEqual(decimal.Zero) || available.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, available
	}

	if available.LessThan(limit) {
		return available, decimal.Zero
	}

	return limit, available.Sub(limit)
}

// firstUnsettledBefore returns the lowest-numbered unsettled installment
// strictly before number, or 0 if every predecessor is settled.
// Installments listed in exempt (targeted in the same batch) are skipped.
func firstUnsettledBefore(statuses []domain.InstallmentStatus, number int, exempt map[string]bool) int {
	for _, st := range statuses {
		if st.Number >= number {
			continue
		}

		if st.Settled || exempt[st.InstallmentID] {
			continue
		}

		return st.Number
	}

	return 0
}

// totalPending sums the pending totals of all unsettled installments.
func totalPending(statuses []domain.InstallmentStatus) decimal.Decimal {
	sum := decimal.Zero
	for _, st := range statuses {
		if !st.Settled {
			sum = sum.Add(st.PendingTotal)
		}
	}

	return sum
}
