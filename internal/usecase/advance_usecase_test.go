package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/internal/usecase/mocks"
)

type advanceFixture struct {
	loanRepo        *mocks.MockLoanRepository
	installmentRepo *mocks.MockInstallmentRepository
	paymentRepo     *mocks.MockPaymentRepository
	sessionRepo     *mocks.MockSessionRepository
	movementRepo    *mocks.MockMovementRepository
	uc              *usecase.AdvanceUseCase
}

func newAdvanceFixture() *advanceFixture {
	f := &advanceFixture{
		loanRepo:        mocks.NewMockLoanRepository(),
		installmentRepo: mocks.NewMockInstallmentRepository(),
		paymentRepo:     mocks.NewMockPaymentRepository(),
		sessionRepo:     mocks.NewMockSessionRepository(),
		movementRepo:    mocks.NewMockMovementRepository(),
	}

	loan, installments := fixtureLoan()
	f.loanRepo.Add(loan)
	f.installmentRepo.Add(installments...)
	f.sessionRepo.Add(&domain.CashSession{
		ID:             "ses-1",
		CashierID:      "cash-1",
		OpeningBalance: dec("100.00"),
	})

	// Installment 1 settled with a post-due payment (fee waived).
	instID := "inst-1"
	f.paymentRepo.Add(&domain.Payment{
		ID:            "pre-1",
		LoanID:        loan.ID,
		InstallmentID: &instID,
		InterestPaid:  dec("20.00"),
		PrincipalPaid: dec("326.75"),
		CreatedAt:     installments[0].DueDate.AddDate(0, 0, 1),
	})

	f.uc = usecase.NewAdvanceUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockRetrier(),
		f.loanRepo,
		f.installmentRepo,
		f.paymentRepo,
		f.sessionRepo,
		f.movementRepo,
		mocks.NewMockIDGenerator(),
	)

	return f
}

// Installments 2 and 3 are past due: pending 346.75+3.47 and 346.76+3.47.
const advanceRequired = "700.45"

func TestQuoteAdvancePayment(t *testing.T) {
	f := newAdvanceFixture()

	quote, err := f.uc.QuoteAdvancePayment(context.Background(), "loan-1", []string{"inst-3", "inst-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.RequiredTotal.Equal(dec(advanceRequired)) {
		t.Errorf("required total = %s, want %s", quote.RequiredTotal, advanceRequired)
	}

	if len(quote.Installments) != 2 || quote.Installments[0].Number != 2 {
		t.Errorf("quote must order installments by number, got %+v", quote.Installments)
	}
}

func TestAllocateAdvancePaymentAmountMismatch(t *testing.T) {
	f := newAdvanceFixture()

	_, err := f.uc.AllocateAdvancePayment(context.Background(), usecase.AllocateAdvancePaymentInput{
		LoanID:         "loan-1",
		InstallmentIDs: []string{"inst-2", "inst-3"},
		Amount:         dec("200.00"),
		Method:         domain.MethodDebitCard,
		CashSessionID:  "ses-1",
		CashierID:      "cash-1",
	})

	var mismatch *domain.AmountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want AmountMismatchError", err)
	}

	if !mismatch.Required.Equal(dec(advanceRequired)) {
		t.Errorf("quoted required = %s, want %s", mismatch.Required, advanceRequired)
	}

	if len(f.paymentRepo.All()) != 1 {
		t.Error("rejected advance must not persist payments")
	}
}

func TestAllocateAdvancePaymentDigital(t *testing.T) {
	f := newAdvanceFixture()

	payments, err := f.uc.AllocateAdvancePayment(context.Background(), usecase.AllocateAdvancePaymentInput{
		LoanID:         "loan-1",
		InstallmentIDs: []string{"inst-2", "inst-3"},
		Amount:         dec(advanceRequired),
		Method:         domain.MethodDigitalWallet,
		CashSessionID:  "ses-1",
		CashierID:      "cash-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}

	if payments[0].BatchRef == nil || payments[1].BatchRef == nil || *payments[0].BatchRef != *payments[1].BatchRef {
		t.Error("advance records must share a batch reference")
	}

	total := payments[0].Amount.Add(payments[1].Amount)
	if !total.Equal(dec(advanceRequired)) {
		t.Errorf("records total %s, want %s", total, advanceRequired)
	}

	if len(f.installmentRepo.MarkedPaid) != 2 {
		t.Errorf("marked paid = %v, want both targets", f.installmentRepo.MarkedPaid)
	}

	if len(f.movementRepo.All()) != 0 {
		t.Error("digital advance must not create a cash movement")
	}
}

func TestAllocateAdvancePaymentCashRoundsAndFolds(t *testing.T) {
	f := newAdvanceFixture()

	// RoundToCash(700.45) = 700.40: the 0.05 shortfall is inside the
	// tolerance and the targets still settle.
	payments, err := f.uc.AllocateAdvancePayment(context.Background(), usecase.AllocateAdvancePaymentInput{
		LoanID:         "loan-1",
		InstallmentIDs: []string{"inst-2", "inst-3"},
		Amount:         dec("700.40"),
		Method:         domain.MethodCash,
		CashSessionID:  "ses-1",
		CashierID:      "cash-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := payments[0].Amount.Add(payments[1].Amount)
	if !total.Equal(dec("700.40")) {
		t.Errorf("records total %s, want 700.40", total)
	}

	movements := f.movementRepo.All()
	if len(movements) != 1 || !movements[0].Amount.Equal(dec("700.40")) {
		t.Errorf("cash advance must record one collection of 700.40, got %v", movements)
	}
}

func TestAllocateAdvancePaymentPredecessorRules(t *testing.T) {
	f := newAdvanceFixture()

	// inst-3 alone: inst-2 is unsettled and not targeted.
	_, err := f.uc.AllocateAdvancePayment(context.Background(), usecase.AllocateAdvancePaymentInput{
		LoanID:         "loan-1",
		InstallmentIDs: []string{"inst-3"},
		Amount:         dec("350.23"),
		Method:         domain.MethodDebitCard,
		CashSessionID:  "ses-1",
		CashierID:      "cash-1",
	})

	var violation *domain.OrderViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("error = %v, want OrderViolationError", err)
	}

	if violation.BlockingNumber != 2 {
		t.Errorf("blocking installment = %d, want 2", violation.BlockingNumber)
	}
}

func TestAllocateAdvancePaymentTargetAlreadyPaid(t *testing.T) {
	f := newAdvanceFixture()

	_, err := f.uc.AllocateAdvancePayment(context.Background(), usecase.AllocateAdvancePaymentInput{
		LoanID:         "loan-1",
		InstallmentIDs: []string{"inst-1"},
		Amount:         dec("346.75"),
		Method:         domain.MethodDebitCard,
		CashSessionID:  "ses-1",
		CashierID:      "cash-1",
	})

	if !errors.Is(err, domain.ErrInstallmentPaid) {
		t.Errorf("error = %v, want ErrInstallmentPaid", err)
	}
}

func TestQuoteAdvanceUnknownInstallment(t *testing.T) {
	f := newAdvanceFixture()

	_, err := f.uc.QuoteAdvancePayment(context.Background(), "loan-1", []string{"inst-9"})
	if !errors.Is(err, domain.ErrInstallmentNotFound) {
		t.Errorf("error = %v, want ErrInstallmentNotFound", err)
	}
}
