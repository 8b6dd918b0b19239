package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrInstallmentNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrClientHasLoan),
		errors.Is(err, domain.ErrSessionAlreadyOpen),
		errors.Is(err, domain.ErrDuplicatePayment),
		errors.Is(err, domain.ErrPaymentClassified):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrLoanFullyPaid),
		errors.Is(err, domain.ErrInstallmentPaid),
		errors.Is(err, domain.ErrInstallmentOrder),
		errors.Is(err, domain.ErrSessionDifference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotOwned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidPrincipal),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidTerm),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidMovementType),
		errors.Is(err, domain.ErrNotCashMultiple),
		errors.Is(err, domain.ErrBelowDigitalMinimum),
		errors.Is(err, domain.ErrAmountExceedsPending),
		errors.Is(err, domain.ErrAdvanceAmountMismatch),
		errors.Is(err, domain.ErrInstallmentNotOfLoan):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
