package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermCount  int             `json:"term_count"`
	StartDate  time.Time       `json:"start_date"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:         l.ID,
		ClientID:   l.ClientID,
		Principal:  l.Principal,
		AnnualRate: l.AnnualRate,
		TermCount:  l.TermCount,
		StartDate:  l.StartDate,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// ScheduleRowResponse represents one schedule row in API responses.
type ScheduleRowResponse struct {
	Number           int             `json:"number"`
	DueDate          time.Time       `json:"due_date"`
	Amount           decimal.Decimal `json:"amount"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	InterestAmount   decimal.Decimal `json:"interest_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ScheduleFromDomain converts schedule rows to responses.
func ScheduleFromDomain(rows []domain.ScheduleRow) []ScheduleRowResponse {
	result := make([]ScheduleRowResponse, len(rows))
	for i, row := range rows {
		result[i] = ScheduleRowResponse{
			Number:           row.Number,
			DueDate:          row.DueDate,
			Amount:           row.Amount,
			PrincipalAmount:  row.PrincipalAmount,
			InterestAmount:   row.InterestAmount,
			RemainingBalance: row.RemainingBalance,
		}
	}
	return result
}

// InstallmentStatusResponse represents an assessed installment.
type InstallmentStatusResponse struct {
	InstallmentID      string          `json:"installment_id"`
	Number             int             `json:"number"`
	DueDate            time.Time       `json:"due_date"`
	HasLateFee         bool            `json:"has_late_fee"`
	LateFeeAmount      decimal.Decimal `json:"late_fee_amount"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	RemainingInterest  decimal.Decimal `json:"remaining_interest"`
	PendingTotal       decimal.Decimal `json:"pending_total"`
	Settled            bool            `json:"settled"`
}

// InstallmentStatusesFromDomain converts assessed installments to responses.
func InstallmentStatusesFromDomain(statuses []domain.InstallmentStatus) []InstallmentStatusResponse {
	result := make([]InstallmentStatusResponse, len(statuses))
	for i, st := range statuses {
		result[i] = InstallmentStatusResponse{
			InstallmentID:      st.InstallmentID,
			Number:             st.Number,
			DueDate:            st.DueDate,
			HasLateFee:         st.HasLateFee,
			LateFeeAmount:      st.LateFeeAmount,
			RemainingPrincipal: st.RemainingPrincipal,
			RemainingInterest:  st.RemainingInterest,
			PendingTotal:       st.PendingTotal,
			Settled:            st.Settled,
		}
	}
	return result
}

// LoanStatusResponse represents the assessed state of a loan.
type LoanStatusResponse struct {
	Loan                 *LoanResponse               `json:"loan"`
	Installments         []InstallmentStatusResponse `json:"installments"`
	TotalPending         decimal.Decimal             `json:"total_pending"`
	OutstandingPrincipal decimal.Decimal             `json:"outstanding_principal"`
	FullyPaid            bool                        `json:"fully_paid"`
}

// LoanStatusFromDomain converts a loan status to a response.
func LoanStatusFromDomain(s *usecase.LoanStatus) *LoanStatusResponse {
	return &LoanStatusResponse{
		Loan:                 LoanFromDomain(s.Loan),
		Installments:         InstallmentStatusesFromDomain(s.Installments),
		TotalPending:         s.TotalPending,
		OutstandingPrincipal: s.OutstandingPrincipal,
		FullyPaid:            s.FullyPaid,
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID                 string          `json:"id"`
	LoanID             string          `json:"loan_id"`
	InstallmentID      *string         `json:"installment_id,omitempty"`
	CashSessionID      string          `json:"cash_session_id"`
	BatchRef           *string         `json:"batch_ref,omitempty"`
	ExternalRef        *string         `json:"external_ref,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Method             string          `json:"method"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	LateFeePaid        decimal.Decimal `json:"late_fee_paid"`
	RoundingAdjustment decimal.Decimal `json:"rounding_adjustment"`
	Classification     string          `json:"classification"`
	ReceiptType        *string         `json:"receipt_type,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                 p.ID,
		LoanID:             p.LoanID,
		InstallmentID:      p.InstallmentID,
		CashSessionID:      p.CashSessionID,
		BatchRef:           p.BatchRef,
		ExternalRef:        p.ExternalRef,
		Amount:             p.Amount,
		Method:             string(p.Method),
		PrincipalPaid:      p.PrincipalPaid,
		InterestPaid:       p.InterestPaid,
		LateFeePaid:        p.LateFeePaid,
		RoundingAdjustment: p.RoundingAdjustment,
		Classification:     string(p.Classification),
		ReceiptType:        p.ReceiptType,
		CreatedAt:          p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// AdvanceQuoteResponse represents the total owed for targeted installments.
type AdvanceQuoteResponse struct {
	LoanID        string                      `json:"loan_id"`
	Installments  []InstallmentStatusResponse `json:"installments"`
	RequiredTotal decimal.Decimal             `json:"required_total"`
}

// AdvanceQuoteFromDomain converts an advance quote to a response.
func AdvanceQuoteFromDomain(q *usecase.AdvanceQuote) *AdvanceQuoteResponse {
	return &AdvanceQuoteResponse{
		LoanID:        q.LoanID,
		Installments:  InstallmentStatusesFromDomain(q.Installments),
		RequiredTotal: q.RequiredTotal,
	}
}

// SessionResponse represents a cash session in API responses.
type SessionResponse struct {
	ID             string           `json:"id"`
	CashierID      string           `json:"cashier_id"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	CountedBalance *decimal.Decimal `json:"counted_balance,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Closed         bool             `json:"closed"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

// SessionFromDomain converts a domain session to a response.
func SessionFromDomain(s *domain.CashSession) *SessionResponse {
	return &SessionResponse{
		ID:             s.ID,
		CashierID:      s.CashierID,
		OpeningBalance: s.OpeningBalance,
		CountedBalance: s.CountedBalance,
		Difference:     s.Difference,
		Closed:         s.Closed,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
	}
}

// SessionsFromDomain converts domain sessions to responses.
func SessionsFromDomain(sessions []*domain.CashSession) []*SessionResponse {
	result := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		result[i] = SessionFromDomain(s)
	}
	return result
}

// MovementResponse represents a cash movement in API responses.
type MovementResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentID   *string         `json:"payment_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MovementFromDomain converts a domain movement to a response.
func MovementFromDomain(m *domain.CashMovement) *MovementResponse {
	return &MovementResponse{
		ID:          m.ID,
		SessionID:   m.SessionID,
		Type:        string(m.Type),
		Amount:      m.Amount,
		PaymentID:   m.PaymentID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.CashMovement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// SessionSummaryResponse aggregates a session's ledger for display.
type SessionSummaryResponse struct {
	Session          *SessionResponse           `json:"session"`
	ComputedBalance  decimal.Decimal            `json:"computed_balance"`
	MovementsByType  map[string]decimal.Decimal `json:"movements_by_type"`
	PaymentsByMethod map[string]decimal.Decimal `json:"payments_by_method"`
	Movements        []*MovementResponse        `json:"movements"`
	Payments         []*PaymentResponse         `json:"payments"`
}

// SessionSummaryFromDomain converts a session summary to a response.
func SessionSummaryFromDomain(s *usecase.SessionSummary) *SessionSummaryResponse {
	byType := make(map[string]decimal.Decimal, len(s.MovementsByType))
	for t, total := range s.MovementsByType {
		byType[string(t)] = total
	}

	byMethod := make(map[string]decimal.Decimal, len(s.PaymentsByMethod))
	for m, total := range s.PaymentsByMethod {
		byMethod[string(m)] = total
	}

	return &SessionSummaryResponse{
		Session:          SessionFromDomain(s.Session),
		ComputedBalance:  s.ComputedBalance,
		MovementsByType:  byType,
		PaymentsByMethod: byMethod,
		Movements:        MovementsFromDomain(s.Movements),
		Payments:         PaymentsFromDomain(s.Payments),
	}
}

// BalanceResponse represents a session's computed balance.
type BalanceResponse struct {
	SessionID string          `json:"session_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
