package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// SessionUseCase manages cashier shifts and their cash ledger.
type SessionUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	sessionRepo  SessionRepository
	movementRepo MovementRepository
	paymentRepo  PaymentRepository
	idGen        IDGenerator
}

// NewSessionUseCase creates a new SessionUseCase.
func NewSessionUseCase(
	txManager TransactionManager,
	retrier Retrier,
	sessionRepo SessionRepository,
	movementRepo MovementRepository,
	paymentRepo PaymentRepository,
	idGen IDGenerator,
) *SessionUseCase {
	return &SessionUseCase{
		txManager:    txManager,
		retrier:      retrier,
		sessionRepo:  sessionRepo,
		movementRepo: movementRepo,
		paymentRepo:  paymentRepo,
		idGen:        idGen,
	}
}

// OpenSessionInput represents input for opening a session.
type OpenSessionInput struct {
	CashierID      string
	OpeningBalance decimal.Decimal
}

// OpenSession opens a shift for a cashier. A cashier can hold at most
// one open session; the store's partial unique index backs this check
// under concurrent opens.
func (uc *SessionUseCase) OpenSession(ctx context.Context, input OpenSessionInput) (*domain.CashSession, error) {
	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	existing, err := uc.sessionRepo.GetOpenByCashier(ctx, input.CashierID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, domain.ErrSessionAlreadyOpen
	}

	session := &domain.CashSession{
		ID:             uc.idGen.Generate(),
		CashierID:      input.CashierID,
		OpeningBalance: input.OpeningBalance,
		OpenedAt:       time.Now().UTC(),
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// RecordMovementInput represents input for appending a cash movement.
type RecordMovementInput struct {
	SessionID   string
	CashierID   string
	Type        domain.MovementType
	Amount      decimal.Decimal
	Description string
}

// RecordMovement appends a movement to an open session's cash ledger.
// The session row is locked for the append, so a movement cannot slip
// into a session that is closing concurrently.
func (uc *SessionUseCase) RecordMovement(ctx context.Context, input RecordMovementInput) (*domain.CashMovement, error) {
	movement := &domain.CashMovement{
		ID:          uc.idGen.Generate(),
		SessionID:   input.SessionID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.recordMovementOnce(ctx, input, movement)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

func (uc *SessionUseCase) recordMovementOnce(ctx context.Context, input RecordMovementInput, movement *domain.CashMovement) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	session, err := uc.sessionRepo.GetByIDForUpdate(ctx, tx, input.SessionID)
	if err != nil {
		return err
	}

	if session.Closed {
		return domain.ErrSessionClosed
	}

	if session.CashierID != input.CashierID {
		return domain.ErrSessionNotOwned
	}

	if err := uc.movementRepo.CreateTx(ctx, tx, movement); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetBalance computes the running balance of a session from its
// movement history.
func (uc *SessionUseCase) GetBalance(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}

	movements, err := uc.movementRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.ComputeBalance(session, movements), nil
}

// CloseSessionInput represents input for closing a session.
type CloseSessionInput struct {
	SessionID      string
	CashierID      string
	CountedBalance decimal.Decimal
}

// CloseSession reconciles the physically counted amount against the
// computed balance and closes the shift. A difference beyond the close
// tolerance fails the close and leaves the session open.
func (uc *SessionUseCase) CloseSession(ctx context.Context, input CloseSessionInput) (*domain.CashSession, error) {
	if input.CountedBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	var session *domain.CashSession

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		session, err = uc.closeOnce(ctx, input)

		return err
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (uc *SessionUseCase) closeOnce(ctx context.Context, input CloseSessionInput) (*domain.CashSession, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	session, err := uc.sessionRepo.GetByIDForUpdate(ctx, tx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if session.Closed {
		return nil, domain.ErrSessionClosed
	}

	if session.CashierID != input.CashierID {
		return nil, domain.ErrSessionNotOwned
	}

	movements, err := uc.movementRepo.ListBySessionTx(ctx, tx, input.SessionID)
	if err != nil {
		return nil, err
	}

	computed := domain.ComputeBalance(session, movements)
	difference := input.CountedBalance.Sub(computed)

	if difference.Abs().GreaterThan(domain.CloseTolerance) {
		return nil, &domain.SessionDifferenceError{Computed: computed, Counted: input.CountedBalance}
	}

	closedAt := time.Now().UTC()
	if err := uc.sessionRepo.Close(ctx, tx, session.ID, input.CountedBalance, difference, closedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	session.Closed = true
	session.CountedBalance = &input.CountedBalance
	session.Difference = &difference
	session.ClosedAt = &closedAt

	return session, nil
}

// SessionSummary aggregates a session's ledger for display.
type SessionSummary struct {
	Session          *domain.CashSession
	ComputedBalance  decimal.Decimal
	MovementsByType  map[domain.MovementType]decimal.Decimal
	PaymentsByMethod map[domain.PaymentMethod]decimal.Decimal
	Movements        []*domain.CashMovement
	Payments         []*domain.Payment
}

// GetSummary returns the session detail with totals by movement type
// and by payment method. Read-only.
func (uc *SessionUseCase) GetSummary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	movements, err := uc.movementRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byType := make(map[domain.MovementType]decimal.Decimal)
	for _, m := range movements {
		byType[m.Type] = byType[m.Type].Add(m.Amount)
	}

	byMethod := make(map[domain.PaymentMethod]decimal.Decimal)
	for _, p := range payments {
		byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
	}

	return &SessionSummary{
		Session:          session,
		ComputedBalance:  domain.ComputeBalance(session, movements),
		MovementsByType:  byType,
		PaymentsByMethod: byMethod,
		Movements:        movements,
		Payments:         payments,
	}, nil
}

// ListSessions lists a cashier's sessions, newest first.
func (uc *SessionUseCase) ListSessions(ctx context.Context, cashierID string, limit, offset int) ([]*domain.CashSession, error) {
	if limit <= 0 {
		limit = 20
	}

	if limit > 100 {
		limit = 100
	}

	return uc.sessionRepo.ListByCashier(ctx, cashierID, limit, offset)
}
