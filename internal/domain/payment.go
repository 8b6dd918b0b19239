package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	MethodCash          PaymentMethod = "cash"
	MethodDigitalWallet PaymentMethod = "digital_wallet"
	MethodDebitCard     PaymentMethod = "debit_card"
	MethodOther         PaymentMethod = "other"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodDigitalWallet, MethodDebitCard, MethodOther:
		return true
	}

	return false
}

// IsCash reports whether the method settles in physical cash and is
// therefore subject to the cash rounding policy.
func (m PaymentMethod) IsCash() bool {
	return m == MethodCash
}

// PaymentClassification is the two-phase receipt state of a payment.
// A payment settles unclassified and may be classified exactly once.
type PaymentClassification string

const (
	ClassificationUnclassified PaymentClassification = "settled_unclassified"
	ClassificationClassified   PaymentClassification = "classified"
)

// Payment records one accepted payment and how its amount was split.
// Created exactly once; only the classification fields change afterwards.
type Payment struct {
	ID                 string
	LoanID             string
	InstallmentID      *string
	CashSessionID      string
	BatchRef           *string
	ExternalRef        *string
	Amount             decimal.Decimal
	Method             PaymentMethod
	PrincipalPaid      decimal.Decimal
	InterestPaid       decimal.Decimal
	LateFeePaid        decimal.Decimal
	RoundingAdjustment decimal.Decimal
	Classification     PaymentClassification
	ReceiptType        *string
	CreatedAt          time.Time
}

// ComponentSum returns principal + interest + late fee + rounding adjustment.
// It must always equal Amount.
func (p *Payment) ComponentSum() decimal.Decimal {
	return p.PrincipalPaid.
		Add(p.InterestPaid).
		Add(p.LateFeePaid).
		Add(p.RoundingAdjustment)
}
