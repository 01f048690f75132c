package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
)

// Reversible is a balance-bearing movement a devolution can pay back.
// Expense is the only storage-backed variant today; ledger-entry-backed
// reversals go through LedgerUseCase.Cancel instead.
type Reversible interface {
	// TargetID names the movement being reversed.
	TargetID() string
	// Outstanding is the amount still open for reversal.
	Outstanding() decimal.Decimal
	// ValidateReversal checks whether amount can be paid back.
	ValidateReversal(amount decimal.Decimal) error
	// ApplyReversal returns the outstanding balance after paying back
	// amount.
	ApplyReversal(amount decimal.Decimal) decimal.Decimal
}

// ExpenseReversal adapts an expense to the Reversible capability.
type ExpenseReversal struct {
	*domain.Expense
}

// TargetID returns the expense id.
func (r ExpenseReversal) TargetID() string {
	return r.Expense.ID
}

// Outstanding returns the open balance.
func (r ExpenseReversal) Outstanding() decimal.Decimal {
	return r.Expense.Balance
}

var _ Reversible = ExpenseReversal{}
