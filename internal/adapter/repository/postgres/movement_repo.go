package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository. Movements
// are append-only; there is no update or delete.
type MovementRepository struct {
	pool *pgxpool.Pool
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{pool: pool}
}

const movementColumns = `id, session_id, type, amount, payment_id, description, created_at`

// Create appends a movement.
func (r *MovementRepository) Create(ctx context.Context, movement *domain.CashMovement) error {
	return createMovement(ctx, r.pool, movement)
}

// CreateTx appends a movement inside a transaction.
func (r *MovementRepository) CreateTx(ctx context.Context, tx usecase.Transaction, movement *domain.CashMovement) error {
	return createMovement(ctx, tx.(*Tx).PgxTx(), movement)
}

// ListBySession lists a session's movements oldest first.
func (r *MovementRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.CashMovement, error) {
	return listMovements(ctx, r.pool, sessionID)
}

// ListBySessionTx lists a session's movements inside a transaction.
func (r *MovementRepository) ListBySessionTx(ctx context.Context, tx usecase.Transaction, sessionID string) ([]*domain.CashMovement, error) {
	return listMovements(ctx, tx.(*Tx).PgxTx(), sessionID)
}

func createMovement(ctx context.Context, db dbtx, movement *domain.CashMovement) error {
	query := `
		INSERT INTO cash_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := db.Exec(ctx, query,
		movement.ID,
		movement.SessionID,
		string(movement.Type),
		decimalToNumeric(movement.Amount),
		movement.PaymentID,
		movement.Description,
		timeToPgTimestamptz(movement.CreatedAt),
	)

	return err
}

func listMovements(ctx context.Context, db dbtx, sessionID string) ([]*domain.CashMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM cash_movements
		WHERE session_id = $1
		ORDER BY created_at
	`

	rows, err := db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*domain.CashMovement
	for rows.Next() {
		var (
			movement domain.CashMovement
			amount   pgtype.Numeric
		)

		err := rows.Scan(
			&movement.ID,
			&movement.SessionID,
			&movement.Type,
			&amount,
			&movement.PaymentID,
			&movement.Description,
			&movement.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		movement.Amount = numericToDecimal(amount)
		movements = append(movements, &movement)
	}

	return movements, rows.Err()
}
