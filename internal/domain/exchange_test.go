package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func usd(balance int64) *Account {
	return &Account{ID: "usd", Currency: "USD", Balance: decimal.NewFromInt(balance), Active: true}
}

func eur(balance int64) *Account {
	return &Account{ID: "eur", Currency: "EUR", Balance: decimal.NewFromInt(balance), Active: true}
}

func TestCurrencyExchange_SameCurrency(t *testing.T) {
	ce := NewCurrencyExchange(usd(100), usd(0), decimal.Zero, "USD")

	if !ce.Valid() {
		t.Fatal("same-currency pair must be valid even without a rate")
	}

	if !ce.ExchangeRate().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected rate 1, got %s", ce.ExchangeRate())
	}

	if ce.Inverse() {
		t.Error("same-currency pair must not be inverse")
	}

	amount := decimal.NewFromInt(10)
	if !ce.Exchange(amount).Equal(amount) {
		t.Errorf("expected identity conversion, got %s", ce.Exchange(amount))
	}
}

func TestCurrencyExchange_Valid(t *testing.T) {
	tests := []struct {
		name  string
		from  *Account
		to    *Account
		rate  decimal.Decimal
		valid bool
	}{
		{"same currency no rate", usd(0), usd(0), decimal.Zero, true},
		{"different currency positive rate", usd(0), eur(0), decimal.NewFromFloat(0.9), true},
		{"different currency zero rate", usd(0), eur(0), decimal.Zero, false},
		{"different currency negative rate", usd(0), eur(0), decimal.NewFromInt(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := NewCurrencyExchange(tt.from, tt.to, tt.rate, "USD")
			if ce.Valid() != tt.valid {
				t.Errorf("Valid() = %v, want %v", ce.Valid(), tt.valid)
			}
		})
	}
}

func TestCurrencyExchange_Direction(t *testing.T) {
	rate := decimal.NewFromFloat(0.9)

	t.Run("destination is base currency", func(t *testing.T) {
		ce := NewCurrencyExchange(usd(100), eur(0), rate, "EUR")

		if !ce.Inverse() {
			t.Fatal("expected inverse when destination holds the base currency")
		}

		want := decimal.NewFromInt(1).DivRound(rate, ExchangeRateScale)
		if !ce.ExchangeRate().Equal(want) {
			t.Errorf("expected rate %s, got %s", want, ce.ExchangeRate())
		}
	})

	t.Run("destination is not base currency", func(t *testing.T) {
		ce := NewCurrencyExchange(usd(100), eur(0), rate, "USD")

		if ce.Inverse() {
			t.Fatal("expected direct rate when source holds the base currency")
		}

		if !ce.ExchangeRate().Equal(rate) {
			t.Errorf("expected supplied rate %s, got %s", rate, ce.ExchangeRate())
		}
	})
}

func TestCurrencyExchange_Currency(t *testing.T) {
	ce := NewCurrencyExchange(usd(0), eur(0), decimal.NewFromFloat(0.9), "USD")

	if ce.Currency() != "EUR" {
		t.Errorf("expected entry currency EUR, got %s", ce.Currency())
	}
}

func TestCurrencyExchange_RoundTrip(t *testing.T) {
	rate := decimal.NewFromFloat(0.9)
	amount := decimal.NewFromInt(100)

	direct := NewCurrencyExchange(usd(0), eur(0), rate, "USD")
	inverse := NewCurrencyExchange(eur(0), usd(0), rate, "USD")

	roundTripped := inverse.Exchange(direct.Exchange(amount))

	tolerance := decimal.NewFromFloat(0.01)
	if roundTripped.Sub(amount).Abs().GreaterThan(tolerance) {
		t.Errorf("round trip drifted: %s -> %s", amount, roundTripped)
	}
}
