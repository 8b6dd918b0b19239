package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// LoanRepository defines data access for loans.
type LoanRepository interface {
	CreateTx(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	GetByClientID(ctx context.Context, clientID string) (*domain.Loan, error)
}

// InstallmentRepository defines data access for installment rows.
type InstallmentRepository interface {
	CreateBatchTx(ctx context.Context, tx Transaction, installments []*domain.Installment) error
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error)
	ListByLoanTx(ctx context.Context, tx Transaction, loanID string) ([]*domain.Installment, error)
	MarkPaid(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	CreateTx(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error)
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error)
	ListByLoanTx(ctx context.Context, tx Transaction, loanID string) ([]*domain.Payment, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Payment, error)
	UpdateClassification(ctx context.Context, id, receiptType string) error
}

// SessionRepository defines data access for cash sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.CashSession) error
	GetByID(ctx context.Context, id string) (*domain.CashSession, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.CashSession, error)
	GetOpenByCashier(ctx context.Context, cashierID string) (*domain.CashSession, error)
	Close(ctx context.Context, tx Transaction, id string, counted, difference decimal.Decimal, closedAt time.Time) error
	ListByCashier(ctx context.Context, cashierID string, limit, offset int) ([]*domain.CashSession, error)
}

// MovementRepository defines data access for cash movements.
// Movements are append-only.
type MovementRepository interface {
	Create(ctx context.Context, movement *domain.CashMovement) error
	CreateTx(ctx context.Context, tx Transaction, movement *domain.CashMovement) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.CashMovement, error)
	ListBySessionTx(ctx context.Context, tx Transaction, sessionID string) ([]*domain.CashMovement, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PaymentIntentStore bridges gateway-originated payments to their
// settled record: a durable keyed entry with expiry, consulted for
// idempotent replay on the external reference. The unique index on the
// persisted external reference is the hard guarantee; this store is the
// fast path that survives process restarts.
type PaymentIntentStore interface {
	// Lookup returns the payment ID settled under ref, or "" if none.
	Lookup(ctx context.Context, ref string) (string, error)
	// Settle records the payment that settled ref.
	Settle(ctx context.Context, ref, paymentID string, ttl time.Duration) error
}

// DuplicateGuard detects repeated submissions within a short window,
// keyed on a payment fingerprint.
type DuplicateGuard interface {
	// CheckAndMark returns true if fingerprint was seen within the window.
	CheckAndMark(ctx context.Context, fingerprint string, window time.Duration) (bool, error)
	// Unmark drops fingerprint before its window expires.
	Unmark(ctx context.Context, fingerprint string) error
}
