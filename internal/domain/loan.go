package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is a fixed-installment loan. Immutable after creation except
// through payments.
type Loan struct {
	ID         string
	ClientID   string
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermCount  int
	StartDate  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks loan creation parameters.
func (l *Loan) Validate() error {
	return ValidateLoanTerms(l.Principal, l.AnnualRate, l.TermCount)
}

// ValidateLoanTerms validates schedule generation inputs.
func ValidateLoanTerms(principal, annualRate decimal.Decimal, termCount int) error {
	if principal.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidPrincipal
	}

	if annualRate.IsNegative() {
		return ErrInvalidRate
	}

	if termCount <= 0 {
		return ErrInvalidTerm
	}

	return nil
}

// Installment is one scheduled due amount within a loan, ordered 1..N.
// Principal and interest components are fixed at creation time by the
// schedule generator; only Paid changes afterwards.
type Installment struct {
	ID               string
	LoanID           string
	Number           int
	DueDate          time.Time
	Amount           decimal.Decimal
	PrincipalAmount  decimal.Decimal
	InterestAmount   decimal.Decimal
	RemainingBalance decimal.Decimal
	Paid             bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
