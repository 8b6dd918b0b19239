package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	AllocatePayment(ctx context.Context, input usecase.AllocatePaymentInput) (*domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ClassifyPayment(ctx context.Context, id, receiptType string) (*domain.Payment, error)
}

// AdvanceService defines the behavior needed for advance payments.
type AdvanceService interface {
	QuoteAdvancePayment(ctx context.Context, loanID string, installmentIDs []string) (*usecase.AdvanceQuote, error)
	AllocateAdvancePayment(ctx context.Context, input usecase.AllocateAdvancePaymentInput) ([]*domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
	advanceUC AdvanceService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService, advanceUC AdvanceService) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: paymentUC,
		advanceUC: advanceUC,
	}
}

// Allocate runs the payment waterfall against a loan.
func (h *PaymentHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req dto.AllocatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.AllocatePayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to allocate payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// Classify records the fiscal receipt type issued for a payment.
func (h *PaymentHandler) Classify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	var req dto.ClassifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.ClassifyPayment(r.Context(), id, req.ReceiptType)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to classify payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// QuoteAdvance computes the exact total owed for targeted installments.
func (h *PaymentHandler) QuoteAdvance(w http.ResponseWriter, r *http.Request) {
	var req dto.AdvanceQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	quote, err := h.advanceUC.QuoteAdvancePayment(r.Context(), req.LoanID, req.InstallmentIDs)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to quote advance payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdvanceQuoteFromDomain(quote))
}

// AllocateAdvance settles future installments ahead of schedule.
func (h *PaymentHandler) AllocateAdvance(w http.ResponseWriter, r *http.Request) {
	var req dto.AdvancePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payments, err := h.advanceUC.AllocateAdvancePayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to allocate advance payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentsFromDomain(payments))
}
