package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// CreateLoanRequest represents a request to create a loan.
type CreateLoanRequest struct {
	ClientID   string          `json:"client_id"`
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermCount  int             `json:"term_count"`
	StartDate  time.Time       `json:"start_date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanRequest) ToUseCaseInput() usecase.CreateLoanInput {
	return usecase.CreateLoanInput{
		ClientID:   r.ClientID,
		Principal:  r.Principal,
		AnnualRate: r.AnnualRate,
		TermCount:  r.TermCount,
		StartDate:  r.StartDate,
	}
}

// AllocatePaymentRequest represents a request to allocate a payment.
type AllocatePaymentRequest struct {
	LoanID        string          `json:"loan_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	CashSessionID string          `json:"cash_session_id"`
	CashierID     string          `json:"cashier_id"`
	InstallmentID *string         `json:"installment_id,omitempty"`
	ExternalRef   *string         `json:"external_ref,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AllocatePaymentRequest) ToUseCaseInput() usecase.AllocatePaymentInput {
	return usecase.AllocatePaymentInput{
		LoanID:        r.LoanID,
		Amount:        r.Amount,
		Method:        domain.PaymentMethod(r.Method),
		CashSessionID: r.CashSessionID,
		CashierID:     r.CashierID,
		InstallmentID: r.InstallmentID,
		ExternalRef:   r.ExternalRef,
	}
}

// AdvancePaymentRequest represents a request to settle future
// installments ahead of schedule.
type AdvancePaymentRequest struct {
	LoanID         string          `json:"loan_id"`
	InstallmentIDs []string        `json:"installment_ids"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	CashSessionID  string          `json:"cash_session_id"`
	CashierID      string          `json:"cashier_id"`
	ExternalRef    *string         `json:"external_ref,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AdvancePaymentRequest) ToUseCaseInput() usecase.AllocateAdvancePaymentInput {
	return usecase.AllocateAdvancePaymentInput{
		LoanID:         r.LoanID,
		InstallmentIDs: r.InstallmentIDs,
		Amount:         r.Amount,
		Method:         domain.PaymentMethod(r.Method),
		CashSessionID:  r.CashSessionID,
		CashierID:      r.CashierID,
		ExternalRef:    r.ExternalRef,
	}
}

// AdvanceQuoteRequest represents a request to quote an advance payment.
type AdvanceQuoteRequest struct {
	LoanID         string   `json:"loan_id"`
	InstallmentIDs []string `json:"installment_ids"`
}

// ClassifyPaymentRequest represents a request to classify a payment.
type ClassifyPaymentRequest struct {
	ReceiptType string `json:"receipt_type"`
}

// OpenSessionRequest represents a request to open a cash session.
type OpenSessionRequest struct {
	CashierID      string          `json:"cashier_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenSessionRequest) ToUseCaseInput() usecase.OpenSessionInput {
	return usecase.OpenSessionInput{
		CashierID:      r.CashierID,
		OpeningBalance: r.OpeningBalance,
	}
}

// RecordMovementRequest represents a request to record a cash movement.
type RecordMovementRequest struct {
	CashierID   string          `json:"cashier_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// CloseSessionRequest represents a request to close a cash session.
type CloseSessionRequest struct {
	CashierID      string          `json:"cashier_id"`
	CountedBalance decimal.Decimal `json:"counted_balance"`
}
