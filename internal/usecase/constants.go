package usecase

import "time"

const (
	// PaymentIntentTTL is how long a settled external reference is held
	// for idempotent replay.
	PaymentIntentTTL = 24 * time.Hour

	// DuplicateWindow is the window within which an identical cash
	// submission (loan, installment, amount, method) is rejected.
	DuplicateWindow = 60 * time.Second
)
