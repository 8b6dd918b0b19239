package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Validation errors
	ErrInvalidPrincipal    = errors.New("principal must be positive")
	ErrInvalidRate         = errors.New("annual rate must not be negative")
	ErrInvalidTerm         = errors.New("term count must be positive")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNotCashMultiple     = errors.New("cash amount must be a multiple of 0.10")
	ErrBelowDigitalMinimum = errors.New("amount below minimum for digital methods")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidMovementType = errors.New("invalid cash movement type")

	// State errors
	ErrLoanFullyPaid         = errors.New("loan has no outstanding balance")
	ErrInstallmentOrder      = errors.New("earlier installment must be settled first")
	ErrAmountExceedsPending  = errors.New("amount exceeds maximum payable")
	ErrAdvanceAmountMismatch = errors.New("amount does not match total owed")
	ErrInstallmentPaid       = errors.New("installment is already settled")
	ErrInstallmentNotOfLoan  = errors.New("installment does not belong to loan")
	ErrSessionClosed         = errors.New("cash session is closed")
	ErrSessionNotOwned       = errors.New("cash session belongs to another cashier")
	ErrSessionAlreadyOpen    = errors.New("cashier already has an open session")
	ErrSessionDifference     = errors.New("counted amount does not match computed balance")
	ErrClientHasLoan         = errors.New("client already has a loan")
	ErrDuplicatePayment      = errors.New("duplicate payment submission")
	ErrPaymentClassified     = errors.New("payment is already classified")

	// Not-found errors
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrSessionNotFound     = errors.New("cash session not found")
)

// OrderViolationError names the installment blocking a targeted allocation.
type OrderViolationError struct {
	BlockingNumber int
}

func (e *OrderViolationError) Error() string {
	return fmt.Sprintf("%s: installment %d is still pending", ErrInstallmentOrder, e.BlockingNumber)
}

func (e *OrderViolationError) Unwrap() error { return ErrInstallmentOrder }

// AmountMismatchError quotes the exact amount an advance payment must carry.
type AmountMismatchError struct {
	Required  decimal.Decimal
	Submitted decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("%s: required %s, submitted %s", ErrAdvanceAmountMismatch, e.Required, e.Submitted)
}

func (e *AmountMismatchError) Unwrap() error { return ErrAdvanceAmountMismatch }

// MaxPayableError carries the maximum amount the loan currently accepts.
type MaxPayableError struct {
	Max decimal.Decimal
}

func (e *MaxPayableError) Error() string {
	return fmt.Sprintf("%s: maximum is %s", ErrAmountExceedsPending, e.Max)
}

func (e *MaxPayableError) Unwrap() error { return ErrAmountExceedsPending }

// SessionDifferenceError carries the discrepancy that blocked a close.
type SessionDifferenceError struct {
	Computed decimal.Decimal
	Counted  decimal.Decimal
}

func (e *SessionDifferenceError) Error() string {
	return fmt.Sprintf("%s: computed %s, counted %s", ErrSessionDifference, e.Computed, e.Counted)
}

func (e *SessionDifferenceError) Unwrap() error { return ErrSessionDifference }
