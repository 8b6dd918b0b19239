package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, loan_id, installment_id, cash_session_id, batch_ref, external_ref,
	amount, method, principal_paid, interest_paid, late_fee_paid, rounding_adjustment,
	classification, receipt_type, created_at`

// CreateTx inserts a payment inside a transaction. The unique index on
// external_ref rejects a second settlement of the same gateway intent.
func (r *PaymentRepository) CreateTx(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.InstallmentID,
		payment.CashSessionID,
		payment.BatchRef,
		payment.ExternalRef,
		decimalToNumeric(payment.Amount),
		string(payment.Method),
		decimalToNumeric(payment.PrincipalPaid),
		decimalToNumeric(payment.InterestPaid),
		decimalToNumeric(payment.LateFeePaid),
		decimalToNumeric(payment.RoundingAdjustment),
		string(payment.Classification),
		payment.ReceiptType,
		timeToPgTimestamptz(payment.CreatedAt),
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByExternalRef retrieves the payment settled under a gateway reference.
func (r *PaymentRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE external_ref = $1`

	return scanPayment(r.pool.QueryRow(ctx, query, externalRef))
}

// ListByLoan lists a loan's payments oldest first.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	return listPayments(ctx, r.pool, `loan_id`, loanID)
}

// ListByLoanTx lists a loan's payments inside a transaction.
func (r *PaymentRepository) ListByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Payment, error) {
	return listPayments(ctx, tx.(*Tx).PgxTx(), `loan_id`, loanID)
}

// ListBySession lists the payments collected in a cash session.
func (r *PaymentRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Payment, error) {
	return listPayments(ctx, r.pool, `cash_session_id`, sessionID)
}

// UpdateClassification records the fiscal receipt type issued for a payment.
func (r *PaymentRepository) UpdateClassification(ctx context.Context, id, receiptType string) error {
	query := `
		UPDATE payments
		SET classification = $2, receipt_type = $3
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, string(domain.ClassificationClassified), receiptType)

	return err
}

func listPayments(ctx context.Context, db dbtx, column, value string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE ` + column + ` = $1
		ORDER BY created_at
	`

	rows, err := db.Query(ctx, query, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		payment       domain.Payment
		amount        pgtype.Numeric
		principalPaid pgtype.Numeric
		interestPaid  pgtype.Numeric
		lateFeePaid   pgtype.Numeric
		adjustment    pgtype.Numeric
	)

	err := row.Scan(
		&payment.ID,
		&payment.LoanID,
		&payment.InstallmentID,
		&payment.CashSessionID,
		&payment.BatchRef,
		&payment.ExternalRef,
		&amount,
		&payment.Method,
		&principalPaid,
		&interestPaid,
		&lateFeePaid,
		&adjustment,
		&payment.Classification,
		&payment.ReceiptType,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	payment.Amount = numericToDecimal(amount)
	payment.PrincipalPaid = numericToDecimal(principalPaid)
	payment.InterestPaid = numericToDecimal(interestPaid)
	payment.LateFeePaid = numericToDecimal(lateFeePaid)
	payment.RoundingAdjustment = numericToDecimal(adjustment)

	return &payment, nil
}
