package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Kind      string          `json:"kind"`
	Active    bool            `json:"active"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Kind:      string(a.Kind),
		Active:    a.Active,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExpenseFromDomain converts domain expense to response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:        e.ID,
		AccountID: e.AccountID,
		Name:      e.Name,
		Currency:  e.Currency,
		Total:     e.Total,
		Balance:   e.Balance,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	AccountToID      *string         `json:"account_to_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	Inverse          bool            `json:"inverse"`
	Operation        string          `json:"operation"`
	Status           string          `json:"status"`
	Date             string          `json:"date"`
	Reference        string          `json:"reference"`
	ApproverID       *string         `json:"approver_id,omitempty"`
	ApproverDatetime *time.Time      `json:"approver_datetime,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain ledger entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:               e.ID,
		AccountID:        e.AccountID,
		AccountToID:      e.AccountToID,
		Amount:           e.Amount,
		Currency:         e.Currency,
		ExchangeRate:     e.ExchangeRate,
		Inverse:          e.Inverse,
		Operation:        string(e.Operation),
		Status:           string(e.Status),
		Date:             e.Date.Format(domain.DateLayout),
		Reference:        e.Reference,
		ApproverID:       e.ApproverID,
		ApproverDatetime: e.ApproverDatetime,
		CreatedAt:        e.CreatedAt,
	}
}

// EntriesFromDomain converts domain ledger entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// DevolutionResponse pairs the updated expense with the entry that
// recorded the pay-back.
type DevolutionResponse struct {
	Expense *ExpenseResponse `json:"expense"`
	Entry   *EntryResponse   `json:"entry"`
}

// DevolutionFromResult converts a devolution result to a response.
func DevolutionFromResult(r *usecase.DevolutionResult) *DevolutionResponse {
	return &DevolutionResponse{
		Expense: ExpenseFromDomain(r.Expense),
		Entry:   EntryFromDomain(r.Entry),
	}
}

// ConsistencyResponse reports the devolution reconciliation state.
type ConsistencyResponse struct {
	Consistent         bool     `json:"consistent"`
	MismatchedExpenses []string `json:"mismatched_expenses,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidationErrorResponse carries the field to messages map of a failed
// operation.
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}
