package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	LastTx *MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.LastTx = &MockTransaction{}
	return m.LastTx, nil
}

// MockRetrier runs the operation once, no backoff.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu      sync.Mutex
	counter int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// MockLoanRepository is a map-backed LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	CreateTxFunc         func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error)
	GetByClientIDFunc    func(ctx context.Context, clientID string) (*domain.Loan, error)
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{loans: make(map[string]*domain.Loan)}
}

func (m *MockLoanRepository) Add(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
}

func (m *MockLoanRepository) All() []*domain.Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Loan, 0, len(m.loans))
	for _, loan := range m.loans {
		out = append(out, loan)
	}
	return out
}

func (m *MockLoanRepository) CreateTx(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, loan)
	}
	m.Add(loan)
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Loan, error) {
	if m.GetByClientIDFunc != nil {
		return m.GetByClientIDFunc(ctx, clientID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loan := range m.loans {
		if loan.ClientID == clientID {
			return loan, nil
		}
	}
	return nil, domain.ErrLoanNotFound
}

// MockInstallmentRepository is a map-backed InstallmentRepository.
type MockInstallmentRepository struct {
	mu           sync.RWMutex
	installments map[string][]*domain.Installment // by loan ID

	CreateBatchTxFunc func(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error
	ListByLoanFunc    func(ctx context.Context, loanID string) ([]*domain.Installment, error)
	ListByLoanTxFunc  func(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Installment, error)
	MarkPaidFunc      func(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error

	MarkedPaid []string
}

func NewMockInstallmentRepository() *MockInstallmentRepository {
	return &MockInstallmentRepository{installments: make(map[string][]*domain.Installment)}
}

func (m *MockInstallmentRepository) Add(installments ...*domain.Installment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inst := range installments {
		m.installments[inst.LoanID] = append(m.installments[inst.LoanID], inst)
	}
}

func (m *MockInstallmentRepository) CreateBatchTx(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error {
	if m.CreateBatchTxFunc != nil {
		return m.CreateBatchTxFunc(ctx, tx, installments)
	}
	m.Add(installments...)
	return nil
}

func (m *MockInstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	if m.ListByLoanFunc != nil {
		return m.ListByLoanFunc(ctx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installments[loanID], nil
}

func (m *MockInstallmentRepository) ListByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Installment, error) {
	if m.ListByLoanTxFunc != nil {
		return m.ListByLoanTxFunc(ctx, tx, loanID)
	}
	return m.ListByLoan(ctx, loanID)
}

func (m *MockInstallmentRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, tx, id, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkedPaid = append(m.MarkedPaid, id)
	for _, insts := range m.installments {
		for _, inst := range insts {
			if inst.ID == id {
				inst.Paid = true
				inst.UpdatedAt = updatedAt
			}
		}
	}
	return nil
}

// MockPaymentRepository is a map-backed PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments []*domain.Payment

	CreateTxFunc             func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Payment, error)
	GetByExternalRefFunc     func(ctx context.Context, externalRef string) (*domain.Payment, error)
	ListByLoanFunc           func(ctx context.Context, loanID string) ([]*domain.Payment, error)
	ListByLoanTxFunc         func(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Payment, error)
	ListBySessionFunc        func(ctx context.Context, sessionID string) ([]*domain.Payment, error)
	UpdateClassificationFunc func(ctx context.Context, id, receiptType string) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Add(payments ...*domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, payments...)
}

func (m *MockPaymentRepository) All() []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Payment(nil), m.payments...)
}

func (m *MockPaymentRepository) CreateTx(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, payment)
	}
	m.Add(payment)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error) {
	if m.GetByExternalRefFunc != nil {
		return m.GetByExternalRefFunc(ctx, externalRef)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ExternalRef != nil && *p.ExternalRef == externalRef {
			return p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	if m.ListByLoanFunc != nil {
		return m.ListByLoanFunc(ctx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) ListByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Payment, error) {
	if m.ListByLoanTxFunc != nil {
		return m.ListByLoanTxFunc(ctx, tx, loanID)
	}
	return m.ListByLoan(ctx, loanID)
}

func (m *MockPaymentRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Payment, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.CashSessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) UpdateClassification(ctx context.Context, id, receiptType string) error {
	if m.UpdateClassificationFunc != nil {
		return m.UpdateClassificationFunc(ctx, id, receiptType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			p.Classification = domain.ClassificationClassified
			rt := receiptType
			p.ReceiptType = &rt
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

// MockSessionRepository is a map-backed SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.CashSession

	CreateFunc           func(ctx context.Context, session *domain.CashSession) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.CashSession, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.CashSession, error)
	GetOpenByCashierFunc func(ctx context.Context, cashierID string) (*domain.CashSession, error)
	CloseFunc            func(ctx context.Context, tx usecase.Transaction, id string, counted, difference decimal.Decimal, closedAt time.Time) error
	ListByCashierFunc    func(ctx context.Context, cashierID string, limit, offset int) ([]*domain.CashSession, error)
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*domain.CashSession)}
}

func (m *MockSessionRepository) Add(session *domain.CashSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.CashSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.Add(session)
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.CashSession, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CashSession, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSessionRepository) GetOpenByCashier(ctx context.Context, cashierID string) (*domain.CashSession, error) {
	if m.GetOpenByCashierFunc != nil {
		return m.GetOpenByCashierFunc(ctx, cashierID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.CashierID == cashierID && !s.Closed {
			return s, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Close(ctx context.Context, tx usecase.Transaction, id string, counted, difference decimal.Decimal, closedAt time.Time) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tx, id, counted, difference, closedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Closed = true
	s.CountedBalance = &counted
	s.Difference = &difference
	s.ClosedAt = &closedAt
	return nil
}

func (m *MockSessionRepository) ListByCashier(ctx context.Context, cashierID string, limit, offset int) ([]*domain.CashSession, error) {
	if m.ListByCashierFunc != nil {
		return m.ListByCashierFunc(ctx, cashierID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CashSession
	for _, s := range m.sessions {
		if s.CashierID == cashierID {
			out = append(out, s)
		}
	}
	return out, nil
}

// MockMovementRepository is an append-only MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements []*domain.CashMovement

	CreateFunc          func(ctx context.Context, movement *domain.CashMovement) error
	CreateTxFunc        func(ctx context.Context, tx usecase.Transaction, movement *domain.CashMovement) error
	ListBySessionFunc   func(ctx context.Context, sessionID string) ([]*domain.CashMovement, error)
	ListBySessionTxFunc func(ctx context.Context, tx usecase.Transaction, sessionID string) ([]*domain.CashMovement, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{}
}

func (m *MockMovementRepository) Add(movements ...*domain.CashMovement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movements...)
}

func (m *MockMovementRepository) All() []*domain.CashMovement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.CashMovement(nil), m.movements...)
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *domain.CashMovement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, movement)
	}
	m.Add(movement)
	return nil
}

func (m *MockMovementRepository) CreateTx(ctx context.Context, tx usecase.Transaction, movement *domain.CashMovement) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, movement)
	}
	m.Add(movement)
	return nil
}

func (m *MockMovementRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.CashMovement, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CashMovement
	for _, mv := range m.movements {
		if mv.SessionID == sessionID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *MockMovementRepository) ListBySessionTx(ctx context.Context, tx usecase.Transaction, sessionID string) ([]*domain.CashMovement, error) {
	if m.ListBySessionTxFunc != nil {
		return m.ListBySessionTxFunc(ctx, tx, sessionID)
	}
	return m.ListBySession(ctx, sessionID)
}

// MockPaymentIntentStore is an in-memory PaymentIntentStore.
type MockPaymentIntentStore struct {
	mu      sync.RWMutex
	entries map[string]string

	LookupFunc func(ctx context.Context, ref string) (string, error)
	SettleFunc func(ctx context.Context, ref, paymentID string, ttl time.Duration) error
}

func NewMockPaymentIntentStore() *MockPaymentIntentStore {
	return &MockPaymentIntentStore{entries: make(map[string]string)}
}

func (m *MockPaymentIntentStore) Lookup(ctx context.Context, ref string) (string, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, ref)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[ref], nil
}

func (m *MockPaymentIntentStore) Settle(ctx context.Context, ref, paymentID string, ttl time.Duration) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, ref, paymentID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[ref] = paymentID
	return nil
}

// MockDuplicateGuard is an in-memory DuplicateGuard.
type MockDuplicateGuard struct {
	mu   sync.Mutex
	seen map[string]bool

	CheckAndMarkFunc func(ctx context.Context, fingerprint string, window time.Duration) (bool, error)
	UnmarkFunc       func(ctx context.Context, fingerprint string) error
}

func NewMockDuplicateGuard() *MockDuplicateGuard {
	return &MockDuplicateGuard{seen: make(map[string]bool)}
}

func (m *MockDuplicateGuard) CheckAndMark(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	if m.CheckAndMarkFunc != nil {
		return m.CheckAndMarkFunc(ctx, fingerprint, window)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[fingerprint] {
		return true, nil
	}
	m.seen[fingerprint] = true
	return false, nil
}

func (m *MockDuplicateGuard) Unmark(ctx context.Context, fingerprint string) error {
	if m.UnmarkFunc != nil {
		return m.UnmarkFunc(ctx, fingerprint)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, fingerprint)
	return nil
}
