package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a committed outgoing movement with an outstanding balance
// that devolutions pay back. AccountID records the cash account the
// expense originally drew from.
type Expense struct {
	ID        string
	AccountID string
	Name      string
	Currency  string
	Total     decimal.Decimal
	Balance   decimal.Decimal
	Active    bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateReversal checks if amount can be paid back against the
// outstanding balance.
func (e *Expense) ValidateReversal(amount decimal.Decimal) error {
	if !e.Active {
		return ErrExpenseInactive
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(e.Balance) {
		return ErrExcessDevolution
	}

	return nil
}

// ApplyReversal returns the outstanding balance after paying back amount.
func (e *Expense) ApplyReversal(amount decimal.Decimal) decimal.Decimal {
	return e.Balance.Sub(amount)
}
