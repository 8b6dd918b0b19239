package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// PaymentUseCase allocates single payments across a loan's installments.
type PaymentUseCase struct {
	txManager       TransactionManager
	retrier         Retrier
	loanRepo        LoanRepository
	installmentRepo InstallmentRepository
	paymentRepo     PaymentRepository
	sessionRepo     SessionRepository
	movementRepo    MovementRepository
	intents         PaymentIntentStore
	dupGuard        DuplicateGuard
	idGen           IDGenerator
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	retrier Retrier,
	loanRepo LoanRepository,
	installmentRepo InstallmentRepository,
	paymentRepo PaymentRepository,
	sessionRepo SessionRepository,
	movementRepo MovementRepository,
	intents PaymentIntentStore,
	dupGuard DuplicateGuard,
	idGen IDGenerator,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:       txManager,
		retrier:         retrier,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		sessionRepo:     sessionRepo,
		movementRepo:    movementRepo,
		intents:         intents,
		dupGuard:        dupGuard,
		idGen:           idGen,
	}
}

// AllocatePaymentInput represents input for allocating one payment.
type AllocatePaymentInput struct {
	LoanID        string
	Amount        decimal.Decimal
	Method        domain.PaymentMethod
	CashSessionID string
	CashierID     string
	InstallmentID *string
	ExternalRef   *string
}

// AllocatePayment splits one payment across late fee, interest and
// principal and persists the result atomically.
//
// With a target installment the amount is capped at that installment's
// pending total and exactly one payment row is written. Without a
// target the amount waterfalls across installments oldest-first and one
// row is written per installment touched, grouped by a batch reference;
// the row for the oldest installment is returned.
func (uc *PaymentUseCase) AllocatePayment(ctx context.Context, input AllocatePaymentInput) (*domain.Payment, error) {
	if !domain.ValidMethod(input.Method) {
		return nil, domain.ErrInvalidMethod
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if input.CashSessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	guarded := false

	if ref := externalRef(input.ExternalRef); ref != "" {
		if existing, err := uc.replayByExternalRef(ctx, ref); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
	} else if input.Method.IsCash() {
		seen, err := uc.dupGuard.CheckAndMark(ctx, cashFingerprint(input), DuplicateWindow)
		if err != nil {
			return nil, err
		}

		if seen {
			return nil, domain.ErrDuplicatePayment
		}

		guarded = true
	}

	var payment *domain.Payment

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		payment, err = uc.allocateOnce(ctx, input)

		return err
	})
	if err != nil {
		// Nothing persisted; the fingerprint must not block a corrected
		// resubmission for the rest of the window.
		if guarded {
			_ = uc.dupGuard.Unmark(ctx, cashFingerprint(input))
		}

		return nil, err
	}

	if ref := externalRef(input.ExternalRef); ref != "" {
		if err := uc.intents.Settle(ctx, ref, payment.ID, PaymentIntentTTL); err != nil {
			// The durable record exists; the fast path will repair on
			// the next lookup.
			return payment, nil
		}
	}

	return payment, nil
}

func (uc *PaymentUseCase) allocateOnce(ctx context.Context, input AllocatePaymentInput) (*domain.Payment, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, input.LoanID); err != nil {
		return nil, err
	}

	session, err := uc.lockOpenSession(ctx, tx, input.CashSessionID, input.CashierID)
	if err != nil {
		return nil, err
	}

	statuses, err := uc.loadStatusesTx(ctx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}

	pending := totalPending(statuses)
	if domain.IsSettled(pending) {
		return nil, domain.ErrLoanFullyPaid
	}

	order, maxExact, err := allocationOrder(statuses, input.InstallmentID, pending)
	if err != nil {
		return nil, err
	}

	if err := validateAmount(input.Amount, input.Method, maxExact); err != nil {
		return nil, err
	}

	slices, _ := allocateWaterfall(order, decimal.Min(input.Amount, maxExact))

	// Whatever the waterfall could not place is the cash rounding delta;
	// it stays on the payment as its rounding adjustment so the full
	// collected amount is accounted for.
	adjustment := input.Amount.Sub(sliceSum(slices))

	now := time.Now().UTC()

	var batchRef *string
	if len(slices) > 1 {
		ref := uc.idGen.Generate()
		batchRef = &ref
	}

	var primary *domain.Payment
	for i, s := range slices {
		instID := s.Status.InstallmentID

		p := &domain.Payment{
			ID:             uc.idGen.Generate(),
			LoanID:         input.LoanID,
			InstallmentID:  &instID,
			CashSessionID:  session.ID,
			BatchRef:       batchRef,
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

		if i == len(slices)-1 {
			p.RoundingAdjustment = adjustment
			p.Amount = p.Amount.Add(adjustment)
		}

		if err := uc.paymentRepo.CreateTx(ctx, tx, p); err != nil {
			return nil, err
		}

		if s.SettlesInstallment() {
			if err := uc.installmentRepo.MarkPaid(ctx, tx, instID, now); err != nil {
				return nil, err
			}
		}

		if primary == nil {
			primary = p
		}
	}

	if input.Method.IsCash() {
		movement := &domain.CashMovement{
			ID:          uc.idGen.Generate(),
			SessionID:   session.ID,
			Type:        domain.MovementCollection,
			Amount:      input.Amount,
			PaymentID:   &primary.ID,
			Description: fmt.Sprintf("loan payment %s", primary.ID),
			CreatedAt:   now,
		}

		if err := uc.movementRepo.CreateTx(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return primary, nil
}

// lockOpenSession locks the session row and verifies it is open and
// owned by the calling cashier.
func (uc *PaymentUseCase) lockOpenSession(ctx context.Context, tx Transaction, sessionID, cashierID string) (*domain.CashSession, error) {
	session, err := uc.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Closed {
		return nil, domain.ErrSessionClosed
	}

	if session.CashierID != cashierID {
		return nil, domain.ErrSessionNotOwned
	}

	return session, nil
}

func (uc *PaymentUseCase) loadStatusesTx(ctx context.Context, tx Transaction, loanID string) ([]domain.InstallmentStatus, error) {
	installments, err := uc.installmentRepo.ListByLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	return AssessLoan(installments, payments, time.Now().UTC()), nil
}

// allocationOrder resolves the installments a payment may touch and the
// exact maximum payable. A targeted payment requires every predecessor
// settled and is capped at the target's pending total; a free-form
// payment walks all unsettled installments oldest-first.
func allocationOrder(statuses []domain.InstallmentStatus, installmentID *string, loanPending decimal.Decimal) ([]domain.InstallmentStatus, decimal.Decimal, error) {
	if installmentID == nil {
		return statuses, loanPending, nil
	}

	var target *domain.InstallmentStatus
	for i := range statuses {
		if statuses[i].InstallmentID == *installmentID {
			target = &statuses[i]
			break
		}
	}

	if target == nil {
		return nil, decimal.Zero, domain.ErrInstallmentNotFound
	}

	if target.Settled {
		return nil, decimal.Zero, domain.ErrInstallmentPaid
	}

	if blocking := firstUnsettledBefore(statuses, target.Number, nil); blocking != 0 {
		return nil, decimal.Zero, &domain.OrderViolationError{BlockingNumber: blocking}
	}

	return []domain.InstallmentStatus{*target}, target.PendingTotal, nil
}

// validateAmount enforces the per-method amount rules against the exact
// maximum payable.
func validateAmount(amount decimal.Decimal, method domain.PaymentMethod, maxExact decimal.Decimal) error {
	if method.IsCash() {
		if !domain.IsCashAmount(amount) {
			return domain.ErrNotCashMultiple
		}

		maxCash := domain.RoundToCash(maxExact)
		if amount.GreaterThan(maxCash) {
			return &domain.MaxPayableError{Max: maxCash}
		}

		return nil
	}

	if amount.LessThan(domain.MinDigitalAmount) {
		return domain.ErrBelowDigitalMinimum
	}

	if amount.GreaterThan(maxExact) {
		return &domain.MaxPayableError{Max: maxExact}
	}

	return nil
}

// ClassifyPayment attaches a receipt classification to a settled
// payment. Allowed exactly once.
func (uc *PaymentUseCase) ClassifyPayment(ctx context.Context, paymentID, receiptType string) (*domain.Payment, error) {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Classification == domain.ClassificationClassified {
		return nil, domain.ErrPaymentClassified
	}

	if err := uc.paymentRepo.UpdateClassification(ctx, paymentID, receiptType); err != nil {
		return nil, err
	}

	payment.Classification = domain.ClassificationClassified
	payment.ReceiptType = &receiptType

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// replayByExternalRef returns the already-settled payment for ref, or
// nil if the reference is new.
func (uc *PaymentUseCase) replayByExternalRef(ctx context.Context, ref string) (*domain.Payment, error) {
	if id, err := uc.intents.Lookup(ctx, ref); err == nil && id != "" {
		if p, err := uc.paymentRepo.GetByID(ctx, id); err == nil {
			return p, nil
		}
	}

	p, err := uc.paymentRepo.GetByExternalRef(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return p, nil
}

func externalRef(ref *string) string {
	if ref == nil {
		return ""
	}

	return *ref
}

func cashFingerprint(input AllocatePaymentInput) string {
	inst := ""
	if input.InstallmentID != nil {
		inst = *input.InstallmentID
	}

	return fmt.Sprintf("%s|%s|%s|%s", input.LoanID, inst, input.Amount, input.Method)
}

func sliceSum(slices []allocationSlice) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range slices {
		sum = sum.Add(s.Total())
	}

	return sum
}
