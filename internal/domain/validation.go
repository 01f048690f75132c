package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidDate        = errors.New("invalid date")
	ErrMissingReference   = errors.New("reference is required")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxMovementAmount    = "1000000000000" // 1 trillion
	DateLayout           = "2006-01-02"
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"BOB": true, "ARS": true, "CLP": true, "PEN": true,
}

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates movement amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxMovementAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxMovementAmount)
	}

	return nil
}

// ValidateExchangeRate validates a supplied exchange rate
func ValidateExchangeRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidExchangeRate
	}

	return nil
}

// ParseDate parses a movement date and rejects anything that is not a
// real calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}

	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s is not a valid date", ErrInvalidDate, value)
	}

	return date, nil
}

// ValidateReference validates the free-text reference of a movement
func ValidateReference(reference string) error {
	if strings.TrimSpace(reference) == "" {
		return ErrMissingReference
	}

	return nil
}

// Pagination policy for every listing surface.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
