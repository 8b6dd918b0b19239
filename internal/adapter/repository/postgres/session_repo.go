package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// SessionRepository implements usecase.SessionRepository.
type SessionRepository struct {
	pool dbtx
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, cashier_id, opening_balance, counted_balance, difference,
	closed, opened_at, closed_at`

// Create opens a session. The partial unique index on open sessions per
// cashier turns a concurrent double-open into a constraint error.
func (r *SessionRepository) Create(ctx context.Context, session *domain.CashSession) error {
	query := `
		INSERT INTO cash_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.CashierID,
		decimalToNumeric(session.OpeningBalance),
		nil,
		nil,
		session.Closed,
		timeToPgTimestamptz(session.OpenedAt),
		nil,
	)
	if isUniqueViolation(err) {
		return domain.ErrSessionAlreadyOpen
	}

	return err
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.CashSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE id = $1`

	return scanSession(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a session by ID with a FOR UPDATE lock.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CashSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE id = $1 FOR UPDATE`

	return scanSession(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// GetOpenByCashier retrieves a cashier's open session, if any.
func (r *SessionRepository) GetOpenByCashier(ctx context.Context, cashierID string) (*domain.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE cashier_id = $1 AND NOT closed
	`

	return scanSession(r.pool.QueryRow(ctx, query, cashierID))
}

// Close reconciles and closes a session.
func (r *SessionRepository) Close(ctx context.Context, tx usecase.Transaction, id string, counted, difference decimal.Decimal, closedAt time.Time) error {
	query := `
		UPDATE cash_sessions
		SET closed = TRUE, counted_balance = $2, difference = $3, closed_at = $4
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		id,
		decimalToNumeric(counted),
		decimalToNumeric(difference),
		timeToPgTimestamptz(closedAt),
	)

	return err
}

// ListByCashier lists a cashier's sessions newest first.
func (r *SessionRepository) ListByCashier(ctx context.Context, cashierID string, limit, offset int) ([]*domain.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE cashier_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, cashierID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.CashSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.CashSession, error) {
	var (
		session        domain.CashSession
		openingBalance pgtype.Numeric
		countedBalance pgtype.Numeric
		difference     pgtype.Numeric
		closedAt       pgtype.Timestamptz
	)

	err := row.Scan(
		&session.ID,
		&session.CashierID,
		&openingBalance,
		&countedBalance,
		&difference,
		&session.Closed,
		&session.OpenedAt,
		&closedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}

		return nil, err
	}

	session.OpeningBalance = numericToDecimal(openingBalance)
	session.CountedBalance = numericToDecimalPtr(countedBalance)
	session.Difference = numericToDecimalPtr(difference)

	if closedAt.Valid {
		session.ClosedAt = &closedAt.Time
	}

	return &session, nil
}
