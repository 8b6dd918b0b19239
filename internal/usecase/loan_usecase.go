package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// LoanUseCase handles loan creation and status queries.
type LoanUseCase struct {
	txManager       TransactionManager
	loanRepo        LoanRepository
	installmentRepo InstallmentRepository
	paymentRepo     PaymentRepository
	idGen           IDGenerator
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	installmentRepo InstallmentRepository,
	paymentRepo PaymentRepository,
	idGen IDGenerator,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:       txManager,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		idGen:           idGen,
	}
}

// CreateLoanInput represents input for creating a loan.
type CreateLoanInput struct {
	ClientID   string
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermCount  int
	StartDate  time.Time
}

// CreateLoan generates the amortization schedule and persists the loan
// with its installment rows atomically. One loan per client.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	rows, err := domain.GenerateSchedule(input.Principal, input.AnnualRate, input.TermCount, input.StartDate)
	if err != nil {
		return nil, err
	}

	existing, err := uc.loanRepo.GetByClientID(ctx, input.ClientID)
	if err != nil && !errors.Is(err, domain.ErrLoanNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, domain.ErrClientHasLoan
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:         uc.idGen.Generate(),
		ClientID:   input.ClientID,
		Principal:  input.Principal,
		AnnualRate: input.AnnualRate,
		TermCount:  input.TermCount,
		StartDate:  input.StartDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	installments := make([]*domain.Installment, 0, len(rows))
	for _, row := range rows {
		installments = append(installments, &domain.Installment{
			ID:               uc.idGen.Generate(),
			LoanID:           loan.ID,
			Number:           row.Number,
			DueDate:          row.DueDate,
			Amount:           row.Amount,
			PrincipalAmount:  row.PrincipalAmount,
			InterestAmount:   row.InterestAmount,
			RemainingBalance: row.RemainingBalance,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.loanRepo.CreateTx(ctx, tx, loan); err != nil {
		return nil, err
	}

	if err := uc.installmentRepo.CreateBatchTx(ctx, tx, installments); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return loan, nil
}

// PreviewSchedule generates a schedule without persisting anything.
func (uc *LoanUseCase) PreviewSchedule(ctx context.Context, input CreateLoanInput) ([]domain.ScheduleRow, error) {
	return domain.GenerateSchedule(input.Principal, input.AnnualRate, input.TermCount, input.StartDate)
}

// GetLoan retrieves a loan by ID.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// LoanStatus is the read-only per-installment view of a loan.
type LoanStatus struct {
	Loan                 *domain.Loan
	Installments         []domain.InstallmentStatus
	TotalPending         decimal.Decimal
	OutstandingPrincipal decimal.Decimal
	FullyPaid            bool
}

// GetLoanStatus assesses every installment of a loan as of now.
func (uc *LoanUseCase) GetLoanStatus(ctx context.Context, loanID string) (*LoanStatus, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	installments, err := uc.installmentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	statuses := AssessLoan(installments, payments, time.Now().UTC())

	totalPending := decimal.Zero
	outstanding := decimal.Zero

	for _, st := range statuses {
		totalPending = totalPending.Add(st.PendingTotal)
		outstanding = outstanding.Add(st.RemainingPrincipal)
	}

	return &LoanStatus{
		Loan:                 loan,
		Installments:         statuses,
		TotalPending:         totalPending,
		OutstandingPrincipal: outstanding,
		FullyPaid:            domain.IsSettled(totalPending),
	}, nil
}

// AssessLoan assesses all installments of a loan, grouping payments by
// the installment they were allocated to. Installments are assumed
// ordered by number.
func AssessLoan(installments []*domain.Installment, payments []*domain.Payment, asOf time.Time) []domain.InstallmentStatus {
	byInstallment := make(map[string][]*domain.Payment)
	for _, p := range payments {
		if p.InstallmentID == nil {
			continue
		}

		byInstallment[*p.InstallmentID] = append(byInstallment[*p.InstallmentID], p)
	}

	statuses := make([]domain.InstallmentStatus, 0, len(installments))
	for _, inst := range installments {
		statuses = append(statuses, domain.AssessInstallment(inst, byInstallment[inst.ID], asOf))
	}

	return statuses
}
