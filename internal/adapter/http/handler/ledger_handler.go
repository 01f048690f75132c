package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/dto"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/metrics"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// LedgerHandler handles ledger entry HTTP requests.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Get retrieves a ledger entry by ID.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.ledgerUC.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// ListByAccount lists entries for an account.
func (h *LedgerHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.ListEntriesByAccount(r.Context(), usecase.ListEntriesByAccountInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Approve confirms a pending entry.
func (h *LedgerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.ledgerUC.Approve(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve entry", err.Error())
		return
	}

	metrics.EntriesApproved.Inc()
	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Cancel nullifies an entry and reverses its balance effects.
func (h *LedgerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.ledgerUC.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel entry", err.Error())
		return
	}

	metrics.EntriesCancelled.Inc()
	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// CheckConsistency reports expenses whose devolutions no longer add up.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	ok, mismatched, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil && !errors.Is(err, usecase.ErrInconsistentLedger) {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		Consistent:         ok,
		MismatchedExpenses: mismatched,
	})
}
