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

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, client_id, principal, annual_rate, term_count, start_date, created_at, updated_at`

// CreateTx inserts a loan inside a transaction. The unique index on
// client_id turns a concurrent create for the same client into a
// constraint error, mapped to the domain conflict here.
func (r *LoanRepository) CreateTx(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		loan.ID,
		loan.ClientID,
		decimalToNumeric(loan.Principal),
		decimalToNumeric(loan.AnnualRate),
		loan.TermCount,
		timeToPgTimestamptz(loan.StartDate),
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrClientHasLoan
	}

	return err
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	return scanLoan(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	return scanLoan(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// GetByClientID retrieves a client's loan, newest first.
func (r *LoanRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return scanLoan(r.pool.QueryRow(ctx, query, clientID))
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan       domain.Loan
		principal  pgtype.Numeric
		annualRate pgtype.Numeric
	)

	err := row.Scan(
		&loan.ID,
		&loan.ClientID,
		&principal,
		&annualRate,
		&loan.TermCount,
		&loan.StartDate,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	loan.Principal = numericToDecimal(principal)
	loan.AnnualRate = numericToDecimal(annualRate)

	return &loan, nil
}
