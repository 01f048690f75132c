package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/dto"
	"github.com/ledgerhouse/cashbook/internal/domain"
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

// writeUseCaseError renders a use case failure. Field-scoped failures
// become 422 payloads carrying the full field map, everything else maps
// through the sentinel table.
func writeUseCaseError(w http.ResponseWriter, message string, err error) {
	if fieldErrs, ok := domain.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
			Error:  message,
			Fields: fieldErrs,
		})
		return
	}

	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryNotPending),
		errors.Is(err, domain.ErrEntryCancelled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrExpenseInactive),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidExchangeRate),
		errors.Is(err, domain.ErrCurrencyIncompatible),
		errors.Is(err, domain.ErrExcessDevolution):
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
