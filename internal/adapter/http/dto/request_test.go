package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/dto"
)

// An absent exchange_rate and an explicit zero are different requests:
// the first lets the movement resolve its own rate, the second must
// reach validation as the value zero and fail there.
func TestCreatePaymentRequestExchangeRate(t *testing.T) {
	t.Parallel()

	var absent dto.CreatePaymentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"account_id":"a","account_to_id":"b","amount":"10"}`), &absent))
	require.Nil(t, absent.ToUseCaseInput().ExchangeRate)

	var zero dto.CreatePaymentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"account_id":"a","account_to_id":"b","amount":"10","exchange_rate":"0"}`), &zero))
	rate := zero.ToUseCaseInput().ExchangeRate
	require.NotNil(t, rate)
	require.True(t, rate.IsZero())

	var supplied dto.CreatePaymentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"account_id":"a","account_to_id":"b","amount":"10","exchange_rate":"0.9"}`), &supplied))
	rate = supplied.ToUseCaseInput().ExchangeRate
	require.NotNil(t, rate)
	require.True(t, rate.Equal(decimal.NewFromFloat(0.9)))
}

func TestCreateDevolutionRequestToUseCaseInput(t *testing.T) {
	t.Parallel()

	req := dto.CreateDevolutionRequest{
		AccountID:    "exp-1",
		Amount:       decimal.NewFromInt(20),
		Reference:    "refund",
		Verification: true,
	}

	input := req.ToUseCaseInput()
	require.Equal(t, "exp-1", input.AccountID)
	require.True(t, input.Amount.Equal(decimal.NewFromInt(20)))
	require.Equal(t, "refund", input.Reference)
	require.True(t, input.Verification)
}
