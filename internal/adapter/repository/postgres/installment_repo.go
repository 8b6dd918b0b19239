package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// InstallmentRepository implements usecase.InstallmentRepository.
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository.
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

const installmentColumns = `id, loan_id, number, due_date, amount, principal_amount,
	interest_amount, remaining_balance, paid, created_at, updated_at`

// CreateBatchTx inserts a loan's full schedule in one round trip.
func (r *InstallmentRepository) CreateBatchTx(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, inst := range installments {
		batch.Queue(query,
			inst.ID,
			inst.LoanID,
			inst.Number,
			timeToPgTimestamptz(inst.DueDate),
			decimalToNumeric(inst.Amount),
			decimalToNumeric(inst.PrincipalAmount),
			decimalToNumeric(inst.InterestAmount),
			decimalToNumeric(inst.RemainingBalance),
			inst.Paid,
			timeToPgTimestamptz(inst.CreatedAt),
			timeToPgTimestamptz(inst.UpdatedAt),
		)
	}

	return tx.(*Tx).PgxTx().SendBatch(ctx, batch).Close()
}

// ListByLoan lists a loan's installments ordered by number.
func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	return listInstallments(ctx, r.pool, loanID)
}

// ListByLoanTx lists a loan's installments inside a transaction.
func (r *InstallmentRepository) ListByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Installment, error) {
	return listInstallments(ctx, tx.(*Tx).PgxTx(), loanID)
}

// MarkPaid flags a settled installment.
func (r *InstallmentRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	query := `UPDATE installments SET paid = TRUE, updated_at = $2 WHERE id = $1`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, timeToPgTimestamptz(updatedAt))

	return err
}

func listInstallments(ctx context.Context, db dbtx, loanID string) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY number
	`

	rows, err := db.Query(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*domain.Installment
	for rows.Next() {
		var (
			inst             domain.Installment
			amount           pgtype.Numeric
			principalAmount  pgtype.Numeric
			interestAmount   pgtype.Numeric
			remainingBalance pgtype.Numeric
		)

		err := rows.Scan(
			&inst.ID,
			&inst.LoanID,
			&inst.Number,
			&inst.DueDate,
			&amount,
			&principalAmount,
			&interestAmount,
			&remainingBalance,
			&inst.Paid,
			&inst.CreatedAt,
			&inst.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		inst.Amount = numericToDecimal(amount)
		inst.PrincipalAmount = numericToDecimal(principalAmount)
		inst.InterestAmount = numericToDecimal(interestAmount)
		inst.RemainingBalance = numericToDecimal(remainingBalance)
		installments = append(installments, &inst)
	}

	return installments, rows.Err()
}
