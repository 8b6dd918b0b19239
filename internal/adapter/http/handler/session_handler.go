package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// SessionService defines the behavior needed by SessionHandler.
type SessionService interface {
	OpenSession(ctx context.Context, input usecase.OpenSessionInput) (*domain.CashSession, error)
	RecordMovement(ctx context.Context, input usecase.RecordMovementInput) (*domain.CashMovement, error)
	GetBalance(ctx context.Context, sessionID string) (decimal.Decimal, error)
	CloseSession(ctx context.Context, input usecase.CloseSessionInput) (*domain.CashSession, error)
	GetSummary(ctx context.Context, sessionID string) (*usecase.SessionSummary, error)
	ListSessions(ctx context.Context, cashierID string, limit, offset int) ([]*domain.CashSession, error)
}

// SessionHandler handles cash session HTTP requests.
type SessionHandler struct {
	sessionUC SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionUC SessionService) *SessionHandler {
	return &SessionHandler{sessionUC: sessionUC}
}

// Open opens a shift for a cashier.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	session, err := h.sessionUC.OpenSession(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open session", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SessionFromDomain(session))
}

// List lists a cashier's sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	cashierID := r.URL.Query().Get("cashier_id")
	if cashierID == "" {
		writeError(w, http.StatusBadRequest, "missing cashier_id", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	sessions, err := h.sessionUC.ListSessions(r.Context(), cashierID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list sessions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionsFromDomain(sessions))
}

// RecordMovement appends a movement to a session's cash ledger.
func (h *SessionHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	var req dto.RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.sessionUC.RecordMovement(r.Context(), usecase.RecordMovementInput{
		SessionID:   id,
		CashierID:   req.CashierID,
		Type:        domain.MovementType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Balance returns the session's computed balance.
func (h *SessionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	balance, err := h.sessionUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		SessionID: id,
		Balance:   balance,
	})
}

// Summary returns the session detail with totals by movement type and
// payment method.
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	summary, err := h.sessionUC.GetSummary(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get session summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionSummaryFromDomain(summary))
}

// Close reconciles the counted amount and closes the shift.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session ID", "")
		return
	}

	var req dto.CloseSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	session, err := h.sessionUC.CloseSession(r.Context(), usecase.CloseSessionInput{
		SessionID:      id,
		CashierID:      req.CashierID,
		CountedBalance: req.CountedBalance,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close session", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionFromDomain(session))
}
