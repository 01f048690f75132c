package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInactive = errors.New("account is not active")
	ErrSameAccount     = errors.New("cannot pay to same account")

	// Expense errors
	ErrExpenseNotFound = errors.New("expense not found")
	ErrExpenseInactive = errors.New("expense is not active")

	// Movement errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidExchangeRate  = errors.New("exchange rate must be positive")
	ErrCurrencyIncompatible = errors.New("accounts have different currencies and no exchange rate was supplied")

	// Ledger errors
	ErrEntryNotFound    = errors.New("ledger entry not found")
	ErrEntryNotPending  = errors.New("ledger entry is not pending")
	ErrEntryCancelled   = errors.New("ledger entry is already cancelled")
	ErrExcessDevolution = errors.New("devolution exceeds outstanding expense balance")
)
