package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind discriminates reconciliation policy.
type AccountKind string

const (
	AccountKindGeneric AccountKind = "generic"
	AccountKindBank    AccountKind = "bank"
)

// Account represents a balance-holding account. Balance is always
// expressed in the account's own currency.
type Account struct {
	ID        string
	Name      string
	Currency  string
	Balance   decimal.Decimal
	Kind      AccountKind
	Active    bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateMovement checks if the account can take part in a new movement.
func (a *Account) ValidateMovement() error {
	if !a.Active {
		return ErrAccountInactive
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// RequiresConciliation reports whether a movement into this account must
// await approval before it is confirmed. Verified movements skip
// conciliation; bank accounts additionally record the verification in the
// entry so reconciliation reports can match bank statements.
func (a *Account) RequiresConciliation(verified bool) bool {
	return !verified
}
