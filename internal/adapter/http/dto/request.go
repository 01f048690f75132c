package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	Kind           string          `json:"kind,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:           r.Name,
		Currency:       r.Currency,
		Kind:           domain.AccountKind(r.Kind),
		InitialBalance: r.InitialBalance,
	}
}

// CreateExpenseRequest represents a request to register an expense.
type CreateExpenseRequest struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		AccountID: r.AccountID,
		Name:      r.Name,
		Currency:  r.Currency,
		Total:     r.Total,
	}
}

// CreatePaymentRequest represents a request to pay from one account into
// another. ExchangeRate is optional; when present it must be positive,
// so an explicit zero is rejected rather than treated as absent.
type CreatePaymentRequest struct {
	AccountID    string           `json:"account_id"`
	AccountToID  string           `json:"account_to_id"`
	Date         string           `json:"date"`
	Amount       decimal.Decimal  `json:"amount"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate,omitempty"`
	Reference    string           `json:"reference"`
	Verification bool             `json:"verification"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput() usecase.PaymentInput {
	return usecase.PaymentInput{
		AccountID:    r.AccountID,
		AccountToID:  r.AccountToID,
		Date:         r.Date,
		Amount:       r.Amount,
		ExchangeRate: r.ExchangeRate,
		Reference:    r.Reference,
		Verification: r.Verification,
	}
}

// CreateDevolutionRequest represents a request to pay back an expense.
type CreateDevolutionRequest struct {
	AccountID    string          `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Verification bool            `json:"verification"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateDevolutionRequest) ToUseCaseInput() usecase.DevolutionInput {
	return usecase.DevolutionInput{
		AccountID:    r.AccountID,
		Amount:       r.Amount,
		Date:         r.Date,
		Reference:    r.Reference,
		Verification: r.Verification,
	}
}
