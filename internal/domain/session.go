package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType enumerates cash movement kinds.
type MovementType string

const (
	MovementInflow      MovementType = "inflow"
	MovementOutflow     MovementType = "outflow"
	MovementChangeGiven MovementType = "change_given"
	MovementCollection  MovementType = "collection"
)

// ValidMovementType reports whether t is a known movement type.
func ValidMovementType(t MovementType) bool {
	switch t {
	case MovementInflow, MovementOutflow, MovementChangeGiven, MovementCollection:
		return true
	}

	return false
}

// CashSession tracks one cashier's open-to-close shift.
// Closed sessions are immutable.
type CashSession struct {
	ID             string
	CashierID      string
	OpeningBalance decimal.Decimal
	CountedBalance *decimal.Decimal
	Difference     *decimal.Decimal
	Closed         bool
	OpenedAt       time.Time
	ClosedAt       *time.Time
}

// CashMovement is one append-only entry in a session's cash ledger.
type CashMovement struct {
	ID          string
	SessionID   string
	Type        MovementType
	Amount      decimal.Decimal
	PaymentID   *string
	Description string
	CreatedAt   time.Time
}

// Validate checks a movement before it is appended.
func (m *CashMovement) Validate() error {
	if !ValidMovementType(m.Type) {
		return ErrInvalidMovementType
	}

	if m.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// ComputeBalance derives the session balance from its opening balance
// and movement history. The balance is never stored or adjusted
// directly.
func ComputeBalance(s *CashSession, movements []*CashMovement) decimal.Decimal {
	balance := s.OpeningBalance

	for _, m := range movements {
		switch m.Type {
		case MovementInflow, MovementCollection:
			balance = balance.Add(m.Amount)
		case MovementOutflow, MovementChangeGiven:
			balance = balance.Sub(m.Amount)
		}
	}

	return balance
}
