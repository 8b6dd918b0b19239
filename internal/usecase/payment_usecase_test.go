package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strptr(s string) *string { return &s }

// fixtureLoan is the 1000 / 24% / 3-term schedule starting 2024-01-15.
// All due dates are in the past, so a 1% late fee accrues on every
// untouched installment.
func fixtureLoan() (*domain.Loan, []*domain.Installment) {
	loan := &domain.Loan{
		ID:         "loan-1",
		ClientID:   "cli-1",
		Principal:  dec("1000"),
		AnnualRate: dec("0.24"),
		TermCount:  3,
		StartDate:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	rows := []struct {
		amount, principal, interest string
		due                         time.Time
	}{
		{"346.75", "326.75", "20.00", time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)},
		{"346.75", "333.29", "13.46", time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		{"346.76", "339.96", "6.80", time.Date(2024, 4, 14, 12, 0, 0, 0, time.UTC)},
	}

	installments := make([]*domain.Installment, 0, len(rows))
	for i, r := range rows {
		installments = append(installments, &domain.Installment{
			ID:              "inst-" + string(rune('1'+i)),
			LoanID:          loan.ID,
			Number:          i + 1,
			DueDate:         r.due,
			Amount:          dec(r.amount),
			PrincipalAmount: dec(r.principal),
			InterestAmount:  dec(r.interest),
		})
	}

	return loan, installments
}

type allocatorFixture struct {
	loanRepo        *mocks.MockLoanRepository
	installmentRepo *mocks.MockInstallmentRepository
	paymentRepo     *mocks.MockPaymentRepository
	sessionRepo     *mocks.MockSessionRepository
	movementRepo    *mocks.MockMovementRepository
	intents         *mocks.MockPaymentIntentStore
	dupGuard        *mocks.MockDuplicateGuard
	uc              *usecase.PaymentUseCase
}

func newAllocatorFixture() *allocatorFixture {
	f := &allocatorFixture{
		loanRepo:        mocks.NewMockLoanRepository(),
		installmentRepo: mocks.NewMockInstallmentRepository(),
		paymentRepo:     mocks.NewMockPaymentRepository(),
		sessionRepo:     mocks.NewMockSessionRepository(),
		movementRepo:    mocks.NewMockMovementRepository(),
		intents:         mocks.NewMockPaymentIntentStore(),
		dupGuard:        mocks.NewMockDuplicateGuard(),
	}

	loan, installments := fixtureLoan()
	f.loanRepo.Add(loan)
	f.installmentRepo.Add(installments...)
	f.sessionRepo.Add(&domain.CashSession{
		ID:             "ses-1",
		CashierID:      "cash-1",
		OpeningBalance: dec("100.00"),
	})

	f.uc = usecase.NewPaymentUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockRetrier(),
		f.loanRepo,
		f.installmentRepo,
		f.paymentRepo,
		f.sessionRepo,
		f.movementRepo,
		f.intents,
		f.dupGuard,
		mocks.NewMockIDGenerator(),
	)

	return f
}

func baseInput() usecase.AllocatePaymentInput {
	return usecase.AllocatePaymentInput{
		LoanID:        "loan-1",
		Method:        domain.MethodCash,
		CashSessionID: "ses-1",
		CashierID:     "cash-1",
	}
}

func TestAllocatePaymentCashTargeted(t *testing.T) {
	f := newAllocatorFixture()

	// Installment 1 pending: 346.75 + 3.47 late fee = 350.22.
	// Maximum cash is 350.20; paying it leaves 0.02, within tolerance.
	input := baseInput()
	input.Amount = dec("350.20")
	input.InstallmentID = strptr("inst-1")

	payment, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payment.InterestPaid.Equal(dec("20.00")) {
		t.Errorf("interest paid = %s, want 20.00", payment.InterestPaid)
	}
	if !payment.PrincipalPaid.Equal(dec("326.75")) {
		t.Errorf("principal paid = %s, want 326.75", payment.PrincipalPaid)
	}
	if !payment.LateFeePaid.Equal(dec("3.45")) {
		t.Errorf("late fee paid = %s, want 3.45", payment.LateFeePaid)
	}
	if !payment.ComponentSum().Equal(payment.Amount) {
		t.Errorf("components %s do not sum to amount %s", payment.ComponentSum(), payment.Amount)
	}
	if len(f.installmentRepo.MarkedPaid) != 1 || f.installmentRepo.MarkedPaid[0] != "inst-1" {
		t.Errorf("marked paid = %v, want [inst-1]", f.installmentRepo.MarkedPaid)
	}

	movements := f.movementRepo.All()
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(movements))
	}
	if movements[0].Type != domain.MovementCollection || !movements[0].Amount.Equal(dec("350.20")) {
		t.Errorf("movement = %s %s, want collection 350.20", movements[0].Type, movements[0].Amount)
	}
}

func TestAllocatePaymentDigitalExact(t *testing.T) {
	f := newAllocatorFixture()

	input := baseInput()
	input.Method = domain.MethodDigitalWallet
	input.Amount = dec("350.22")
	input.InstallmentID = strptr("inst-1")

	payment, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payment.LateFeePaid.Equal(dec("3.47")) {
		t.Errorf("late fee paid = %s, want 3.47", payment.LateFeePaid)
	}
	if !payment.RoundingAdjustment.IsZero() {
		t.Errorf("rounding adjustment = %s, want 0", payment.RoundingAdjustment)
	}
	if len(f.movementRepo.All()) != 0 {
		t.Error("digital payment must not create a cash movement")
	}
}

func TestAllocatePaymentFreeFormSpillover(t *testing.T) {
	f := newAllocatorFixture()

	input := baseInput()
	input.Amount = dec("700.00")

	payment, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := f.paymentRepo.All()
	if len(all) != 2 {
		t.Fatalf("payment rows = %d, want 2", len(all))
	}

	if payment.BatchRef == nil || all[1].BatchRef == nil || *payment.BatchRef != *all[1].BatchRef {
		t.Error("spillover rows must share a batch reference")
	}

	// First installment is fully settled, second is partial.
	if !all[0].Amount.Equal(dec("350.22")) {
		t.Errorf("row 1 amount = %s, want 350.22", all[0].Amount)
	}
	if !all[1].Amount.Equal(dec("349.78")) {
		t.Errorf("row 2 amount = %s, want 349.78", all[1].Amount)
	}

	total := all[0].Amount.Add(all[1].Amount)
	if !total.Equal(input.Amount) {
		t.Errorf("rows total %s, want %s", total, input.Amount)
	}

	// Both rows cover their installment's interest and principal in
	// full; the second's partially paid fee is waived by the payment.
	if len(f.installmentRepo.MarkedPaid) != 2 {
		t.Errorf("marked paid = %v, want [inst-1 inst-2]", f.installmentRepo.MarkedPaid)
	}
}

func TestAllocatePaymentBoundaryRounding(t *testing.T) {
	f := newAllocatorFixture()

	// A 95.51 pending accepts a 95.50 cash payment; the 0.01 residue is
	// within the settle tolerance.
	f.installmentRepo = mocks.NewMockInstallmentRepository()
	f.installmentRepo.Add(&domain.Installment{
		ID:              "inst-95",
		LoanID:          "loan-1",
		Number:          1,
		DueDate:         time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
		Amount:          dec("95.51"),
		PrincipalAmount: dec("95.00"),
		InterestAmount:  dec("0.51"),
	})

	f.uc = usecase.NewPaymentUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockRetrier(),
		f.loanRepo, f.installmentRepo, f.paymentRepo, f.sessionRepo,
		f.movementRepo, f.intents, f.dupGuard,
		mocks.NewMockIDGenerator(),
	)

	input := baseInput()
	input.Amount = dec("95.50")
	input.InstallmentID = strptr("inst-95")

	payment, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payment.ComponentSum().Equal(dec("95.50")) {
		t.Errorf("component sum = %s, want 95.50", payment.ComponentSum())
	}
	if len(f.installmentRepo.MarkedPaid) != 1 {
		t.Errorf("installment not marked paid, residue within tolerance")
	}
}

func TestAllocatePaymentOverdueExactWithoutFeeSettles(t *testing.T) {
	f := newAllocatorFixture()

	// Overdue 100.00 installment carries a 1.00 accrued fee, but the
	// payment itself is post-due and waives it. Covering interest and
	// principal exactly must settle the installment.
	f.installmentRepo = mocks.NewMockInstallmentRepository()
	f.installmentRepo.Add(&domain.Installment{
		ID:              "inst-odu",
		LoanID:          "loan-1",
		Number:          1,
		DueDate:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Amount:          dec("100.00"),
		PrincipalAmount: dec("90.00"),
		InterestAmount:  dec("10.00"),
	})

	f.uc = usecase.NewPaymentUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockRetrier(),
		f.loanRepo, f.installmentRepo, f.paymentRepo, f.sessionRepo,
		f.movementRepo, f.intents, f.dupGuard,
		mocks.NewMockIDGenerator(),
	)

	input := baseInput()
	input.Amount = dec("100.00")
	input.InstallmentID = strptr("inst-odu")

	payment, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payment.InterestPaid.Equal(dec("10.00")) || !payment.PrincipalPaid.Equal(dec("90.00")) {
		t.Errorf("components = %s/%s, want 10.00/90.00", payment.InterestPaid, payment.PrincipalPaid)
	}
	if !payment.LateFeePaid.IsZero() {
		t.Errorf("late fee paid = %s, want 0", payment.LateFeePaid)
	}
	if len(f.installmentRepo.MarkedPaid) != 1 || f.installmentRepo.MarkedPaid[0] != "inst-odu" {
		t.Errorf("marked paid = %v, want [inst-odu]", f.installmentRepo.MarkedPaid)
	}
}

func TestAllocatePaymentFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *allocatorFixture, input *usecase.AllocatePaymentInput)
		wantErr error
	}{
		{
			name: "non-multiple cash amount",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("95.52")
			},
			wantErr: domain.ErrNotCashMultiple,
		},
		{
			name: "ordering violation",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("350.20")
				input.InstallmentID = strptr("inst-2")
			},
			wantErr: domain.ErrInstallmentOrder,
		},
		{
			name: "amount exceeds maximum",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("350.30")
				input.InstallmentID = strptr("inst-1")
			},
			wantErr: domain.ErrAmountExceedsPending,
		},
		{
			name: "below digital minimum",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Method = domain.MethodDebitCard
				input.Amount = dec("1.99")
			},
			wantErr: domain.ErrBelowDigitalMinimum,
		},
		{
			name: "closed session",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("100.00")
				f.sessionRepo.Add(&domain.CashSession{ID: "ses-1", CashierID: "cash-1", Closed: true})
			},
			wantErr: domain.ErrSessionClosed,
		},
		{
			name: "session owned by another cashier",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("100.00")
				input.CashierID = "cash-2"
			},
			wantErr: domain.ErrSessionNotOwned,
		},
		{
			name: "unknown installment",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("100.00")
				input.InstallmentID = strptr("inst-9")
			},
			wantErr: domain.ErrInstallmentNotFound,
		},
		{
			name: "invalid method",
			mutate: func(f *allocatorFixture, input *usecase.AllocatePaymentInput) {
				input.Amount = dec("100.00")
				input.Method = "check"
			},
			wantErr: domain.ErrInvalidMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAllocatorFixture()
			input := baseInput()
			tt.mutate(f, &input)

			_, err := f.uc.AllocatePayment(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			if len(f.paymentRepo.All()) != 0 {
				t.Error("failed allocation must not persist payments")
			}
		})
	}
}

func TestAllocatePaymentLoanFullyPaid(t *testing.T) {
	f := newAllocatorFixture()

	// Settle everything up front.
	for i, inst := range []string{"inst-1", "inst-2", "inst-3"} {
		instID := inst
		_, installments := fixtureLoan()
		row := installments[i]
		f.paymentRepo.Add(&domain.Payment{
			ID:            "pre-" + inst,
			LoanID:        "loan-1",
			InstallmentID: &instID,
			InterestPaid:  row.InterestAmount,
			PrincipalPaid: row.PrincipalAmount,
			CreatedAt:     row.DueDate.AddDate(0, 0, 1),
		})
	}

	input := baseInput()
	input.Amount = dec("10.00")

	_, err := f.uc.AllocatePayment(context.Background(), input)
	if !errors.Is(err, domain.ErrLoanFullyPaid) {
		t.Errorf("error = %v, want ErrLoanFullyPaid", err)
	}
}

func TestAllocatePaymentDuplicateCashRejected(t *testing.T) {
	f := newAllocatorFixture()

	input := baseInput()
	input.Amount = dec("350.20")
	input.InstallmentID = strptr("inst-1")

	if _, err := f.uc.AllocatePayment(context.Background(), input); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	_, err := f.uc.AllocatePayment(context.Background(), input)
	if !errors.Is(err, domain.ErrDuplicatePayment) {
		t.Errorf("error = %v, want ErrDuplicatePayment", err)
	}
}

func TestAllocatePaymentResubmitAfterFailedAttempt(t *testing.T) {
	f := newAllocatorFixture()

	input := baseInput()
	input.Amount = dec("350.20")
	input.InstallmentID = strptr("inst-1")

	// First attempt lands on a closed session and persists nothing.
	f.sessionRepo.Add(&domain.CashSession{ID: "ses-1", CashierID: "cash-1", Closed: true})
	if _, err := f.uc.AllocatePayment(context.Background(), input); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("error = %v, want ErrSessionClosed", err)
	}
	if len(f.paymentRepo.All()) != 0 {
		t.Fatal("failed allocation must not persist payments")
	}

	// The identical resubmission against a fresh session must not be
	// flagged as a duplicate.
	f.sessionRepo.Add(&domain.CashSession{ID: "ses-1", CashierID: "cash-1", OpeningBalance: dec("100.00")})
	if _, err := f.uc.AllocatePayment(context.Background(), input); err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if got := len(f.paymentRepo.All()); got != 1 {
		t.Errorf("payment rows = %d, want 1", got)
	}
}

func TestAllocatePaymentExternalRefReplay(t *testing.T) {
	f := newAllocatorFixture()

	input := baseInput()
	input.Method = domain.MethodDigitalWallet
	input.Amount = dec("350.22")
	input.InstallmentID = strptr("inst-1")
	input.ExternalRef = strptr("gw-42")

	first, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	second, err := f.uc.AllocatePayment(context.Background(), input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("replay returned %s, want %s", second.ID, first.ID)
	}

	if got := len(f.paymentRepo.All()); got != 1 {
		t.Errorf("payment rows = %d, want 1", got)
	}
}

func TestClassifyPayment(t *testing.T) {
	f := newAllocatorFixture()

	f.paymentRepo.Add(&domain.Payment{
		ID:             "pay-1",
		LoanID:         "loan-1",
		Classification: domain.ClassificationUnclassified,
	})

	p, err := f.uc.ClassifyPayment(context.Background(), "pay-1", "invoice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Classification != domain.ClassificationClassified {
		t.Errorf("classification = %s, want classified", p.Classification)
	}

	if _, err := f.uc.ClassifyPayment(context.Background(), "pay-1", "ticket"); !errors.Is(err, domain.ErrPaymentClassified) {
		t.Errorf("error = %v, want ErrPaymentClassified", err)
	}
}
