package domain

import (
	"github.com/shopspring/decimal"
)

// CurrencyExchange decides whether two accounts can transact and which
// rate applies. It is derived per movement and never persisted; the
// owning ledger entry snapshots its result at creation time.
//
// Direction is determined by which side holds the canonical base
// currency of the deployment, not by transfer direction: when the
// destination account is denominated in the base currency the supplied
// rate is applied as a divisor.
type CurrencyExchange struct {
	from         *Account
	to           *Account
	suppliedRate decimal.Decimal
	baseCurrency string
}

// NewCurrencyExchange builds the exchange for a movement from one
// account into another under the configured base currency.
func NewCurrencyExchange(from, to *Account, rate decimal.Decimal, baseCurrency string) *CurrencyExchange {
	return &CurrencyExchange{
		from:         from,
		to:           to,
		suppliedRate: rate,
		baseCurrency: baseCurrency,
	}
}

// SameCurrency reports whether both accounts share a currency.
func (ce *CurrencyExchange) SameCurrency() bool {
	return ce.from.Currency == ce.to.Currency
}

// Valid reports whether the pair can transact. Fails closed: distinct
// currencies require a positive supplied rate.
func (ce *CurrencyExchange) Valid() bool {
	if ce.SameCurrency() {
		return true
	}
	return ce.suppliedRate.IsPositive()
}

// Currency returns the currency the ledger entry is denominated in,
// which is the destination account's currency.
func (ce *CurrencyExchange) Currency() string {
	return ce.to.Currency
}

// Inverse reports whether the rate must be applied as a divisor: the
// currencies differ and the destination is the base currency.
func (ce *CurrencyExchange) Inverse() bool {
	return !ce.SameCurrency() && ce.to.Currency == ce.baseCurrency
}

// ExchangeRate returns the rate to multiply source amounts by so the
// result lands in the destination currency. Same-currency pairs always
// yield 1; inverse pairs yield 1/rate.
func (ce *CurrencyExchange) ExchangeRate() decimal.Decimal {
	if ce.SameCurrency() {
		return decimal.NewFromInt(1)
	}

	if ce.Inverse() {
		return decimal.NewFromInt(1).DivRound(ce.suppliedRate, ExchangeRateScale)
	}

	return ce.suppliedRate
}

// Exchange converts amount into the destination currency.
func (ce *CurrencyExchange) Exchange(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(ce.ExchangeRate()).Round(MoneyScale)
}

const (
	// ExchangeRateScale bounds stored rate precision.
	ExchangeRateScale = 8
	// MoneyScale bounds converted amounts to cent precision.
	MoneyScale = 2
)
