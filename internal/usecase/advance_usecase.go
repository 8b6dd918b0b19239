package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// AdvanceUseCase settles multiple future installments with one payment.
type AdvanceUseCase struct {
	txManager       TransactionManager
	retrier         Retrier
	loanRepo        LoanRepository
	installmentRepo InstallmentRepository
	paymentRepo     PaymentRepository
	sessionRepo     SessionRepository
	movementRepo    MovementRepository
	idGen           IDGenerator
}

// NewAdvanceUseCase creates a new AdvanceUseCase.
func NewAdvanceUseCase(
	txManager TransactionManager,
	retrier Retrier,
	loanRepo LoanRepository,
	installmentRepo InstallmentRepository,
	paymentRepo PaymentRepository,
	sessionRepo SessionRepository,
	movementRepo MovementRepository,
	idGen IDGenerator,
) *AdvanceUseCase {
	return &AdvanceUseCase{
		txManager:       txManager,
		retrier:         retrier,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		sessionRepo:     sessionRepo,
		movementRepo:    movementRepo,
		idGen:           idGen,
	}
}

// AdvanceQuote is the exact amount owed for a set of installments.
type AdvanceQuote struct {
	LoanID        string
	Installments  []domain.InstallmentStatus
	RequiredTotal decimal.Decimal
}

// QuoteAdvancePayment computes the exact total owed for the targeted
// installments without side effects.
func (uc *AdvanceUseCase) QuoteAdvancePayment(ctx context.Context, loanID string, installmentIDs []string) (*AdvanceQuote, error) {
	if _, err := uc.loanRepo.GetByID(ctx, loanID); err != nil {
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

	targets, err := resolveAdvanceTargets(statuses, installmentIDs)
	if err != nil {
		return nil, err
	}

	required := decimal.Zero
	for _, st := range targets {
		required = required.Add(st.PendingTotal)
	}

	return &AdvanceQuote{
		LoanID:        loanID,
		Installments:  targets,
		RequiredTotal: required,
	}, nil
}

// AllocateAdvancePaymentInput represents input for an advance payment.
type AllocateAdvancePaymentInput struct {
	LoanID         string
	InstallmentIDs []string
	Amount         decimal.Decimal
	Method         domain.PaymentMethod
	CashSessionID  string
	CashierID      string
	ExternalRef    *string
}

// AllocateAdvancePayment validates the submitted amount against the
// exact total owed and settles each targeted installment in number
// order, one payment record per installment sharing a batch reference.
// A terminal rounding remainder folds into the last record's principal.
func (uc *AdvanceUseCase) AllocateAdvancePayment(ctx context.Context, input AllocateAdvancePaymentInput) ([]*domain.Payment, error) {
	if !domain.ValidMethod(input.Method) {
		return nil, domain.ErrInvalidMethod
	}

	if len(input.InstallmentIDs) == 0 {
		return nil, domain.ErrInstallmentNotFound
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if input.CashSessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	var payments []*domain.Payment

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		payments, err = uc.allocateOnce(ctx, input)

		return err
	})
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (uc *AdvanceUseCase) allocateOnce(ctx context.Context, input AllocateAdvancePaymentInput) ([]*domain.Payment, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, input.LoanID); err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.GetByIDForUpdate(ctx, tx, input.CashSessionID)
	if err != nil {
		return nil, err
	}

	if session.Closed {
		return nil, domain.ErrSessionClosed
	}

	if session.CashierID != input.CashierID {
		return nil, domain.ErrSessionNotOwned
	}

	installments, err := uc.installmentRepo.ListByLoanTx(ctx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}

	loanPayments, err := uc.paymentRepo.ListByLoanTx(ctx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}

	statuses := AssessLoan(installments, loanPayments, time.Now().UTC())

	targets, err := resolveAdvanceTargets(statuses, input.InstallmentIDs)
	if err != nil {
		return nil, err
	}

	required := decimal.Zero
	for _, st := range targets {
		required = required.Add(st.PendingTotal)
	}

	if input.Method.IsCash() && !domain.IsCashAmount(input.Amount) {
		return nil, domain.ErrNotCashMultiple
	}

	if input.Amount.Sub(required).Abs().GreaterThan(domain.SettleTolerance) {
		return nil, &domain.AmountMismatchError{Required: required, Submitted: input.Amount}
	}

	slices, _ := allocateWaterfall(targets, decimal.Min(input.Amount, required))

	// The submitted amount may differ from the exact total by the cash
	// rounding step; fold the remainder into the last installment's
	// principal so the full amount lands in the ledger.
	remainder := input.Amount.Sub(sliceSum(slices))

	now := time.Now().UTC()
	batchRef := uc.idGen.Generate()

	payments := make([]*domain.Payment, 0, len(slices))
	for i, s := range slices {
		instID := s.Status.InstallmentID

		p := &domain.Payment{
			ID:             uc.idGen.Generate(),
			LoanID:         input.LoanID,
			InstallmentID:  &instID,
			CashSessionID:  session.ID,
			BatchRef:       &batchRef,
			Amount:         s.Total(),
			Method:         input.Method,
			PrincipalPaid:  s.Principal,
			InterestPaid:   s.Interest,
			LateFeePaid:    s.LateFee,
			Classification: domain.ClassificationUnclassified,
			CreatedAt:      now,
		}

		if i == 0 {
			p.ExternalRef = input.ExternalRef
		}

		if i == len(slices)-1 && !remainder.IsZero() {
			p.PrincipalPaid = p.PrincipalPaid.Add(remainder)
			p.Amount = p.Amount.Add(remainder)
		}

		if err := uc.paymentRepo.CreateTx(ctx, tx, p); err != nil {
			return nil, err
		}

		// Every targeted installment settles: the submitted amount
		// matched the quote within tolerance.
		if err := uc.installmentRepo.MarkPaid(ctx, tx, instID, now); err != nil {
			return nil, err
		}

		payments = append(payments, p)
	}

	if input.Method.IsCash() && len(payments) > 0 {
		movement := &domain.CashMovement{
			ID:          uc.idGen.Generate(),
			SessionID:   session.ID,
			Type:        domain.MovementCollection,
			Amount:      input.Amount,
			PaymentID:   &payments[0].ID,
			Description: fmt.Sprintf("advance payment batch %s", batchRef),
			CreatedAt:   now,
		}

		if err := uc.movementRepo.CreateTx(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payments, nil
}

// resolveAdvanceTargets validates the targeted set and returns the
// targeted statuses ordered by installment number. Every non-targeted
// predecessor of a target must already be settled; predecessors that
// are themselves targeted are exempt.
func resolveAdvanceTargets(statuses []domain.InstallmentStatus, installmentIDs []string) ([]domain.InstallmentStatus, error) {
	byID := make(map[string]domain.InstallmentStatus, len(statuses))
	for _, st := range statuses {
		byID[st.InstallmentID] = st
	}

	targeted := make(map[string]bool, len(installmentIDs))
	targets := make([]domain.InstallmentStatus, 0, len(installmentIDs))

	for _, id := range installmentIDs {
		st, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrInstallmentNotFound, id)
		}

		if targeted[id] {
			continue
		}

		if st.Settled {
			return nil, fmt.Errorf("%w: installment %d", domain.ErrInstallmentPaid, st.Number)
		}

		targeted[id] = true
		targets = append(targets, st)
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Number < targets[j].Number })

	for _, st := range targets {
		if blocking := firstUnsettledBefore(statuses, st.Number, targeted); blocking != 0 {
			return nil, &domain.OrderViolationError{BlockingNumber: blocking}
		}
	}

	return targets, nil
}
