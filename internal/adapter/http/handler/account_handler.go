package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/dto"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/metrics"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// AccountHandler handles account and expense HTTP requests.
type AccountHandler struct {
	accountUC *usecase.AccountUseCase
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC *usecase.AccountUseCase) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeUseCaseError(w, "failed to create account", err)
		return
	}

	metrics.AccountsCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts with pagination.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// CreateExpense registers a new expense under an account.
func (h *AccountHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.accountUC.CreateExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeUseCaseError(w, "failed to create expense", err)
		return
	}

	metrics.ExpensesCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// GetExpense retrieves an expense by ID.
func (h *AccountHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	expense, err := h.accountUC.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}
