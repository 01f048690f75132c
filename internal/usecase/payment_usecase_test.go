package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/ledgerhouse/cashbook/internal/domain"
	"github.com/ledgerhouse/cashbook/internal/usecase"
	"github.com/ledgerhouse/cashbook/internal/usecase/mocks"
)

func ratePtr(value int64) *decimal.Decimal {
	rate := decimal.NewFromInt(value)
	return &rate
}

func newAccount(id, currency string, balance int64) *domain.Account {
	return &domain.Account{
		ID:       id,
		Name:     id,
		Currency: currency,
		Balance:  decimal.NewFromInt(balance),
		Kind:     domain.AccountKindGeneric,
		Active:   true,
	}
}

func newPaymentUseCase(t *testing.T, accRepo *mocks.MockAccountRepository, txMgr *mocks.MockTransactionManager, baseCurrency string) (*usecase.PaymentUseCase, *mocks.MockLedgerRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)

	uc := usecase.NewPaymentUseCase(
		txMgr,
		mocks.NewMockRetrier(),
		accRepo,
		ledgerRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockSessionProvider("user-7"),
		nil,
		baseCurrency,
	)

	return uc, ledgerRepo
}

func TestPaymentUseCase_Pay_SameCurrency(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "USD", 0))
	txMgr := mocks.NewMockTransactionManager()

	uc, ledgerRepo := newPaymentUseCase(t, accRepo, txMgr, "USD")
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	entry, err := uc.Pay(context.Background(), usecase.PaymentInput{
		AccountID:    "acc-1",
		AccountToID:  "acc-2",
		Date:         "2026-03-14",
		Amount:       decimal.NewFromInt(10),
		Reference:    "invoice 42",
		Verification: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !entry.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected rate 1, got %s", entry.ExchangeRate)
	}

	if entry.Inverse {
		t.Error("same-currency payment must not be inverse")
	}

	if entry.Status != domain.EntryStatusConfirmed {
		t.Errorf("expected confirmed, got %s", entry.Status)
	}

	if entry.ApproverID == nil || *entry.ApproverID != "user-7" {
		t.Error("expected approver stamp from acting session")
	}

	from, _ := accRepo.GetByID(context.Background(), "acc-1")
	to, _ := accRepo.GetByID(context.Background(), "acc-2")

	if !from.Balance.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected source balance 90, got %s", from.Balance)
	}

	if !to.Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected destination balance 10, got %s", to.Balance)
	}

	txs := txMgr.Transactions()
	if len(txs) != 1 || !txs[0].Committed {
		t.Error("expected exactly one committed transaction")
	}
}

// Account A holds USD 100, account B holds EUR 0, EUR is the base
// currency. A 10 USD payment at rate 0.9 must apply the inverted rate
// and confirm immediately.
func TestPaymentUseCase_Pay_CrossCurrencyInverse(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "EUR", 0))
	txMgr := mocks.NewMockTransactionManager()

	uc, ledgerRepo := newPaymentUseCase(t, accRepo, txMgr, "EUR")
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	rate := decimal.NewFromFloat(0.9)

	entry, err := uc.Pay(context.Background(), usecase.PaymentInput{
		AccountID:    "acc-1",
		AccountToID:  "acc-2",
		Date:         "2026-03-14",
		Amount:       decimal.NewFromInt(10),
		ExchangeRate: &rate,
		Reference:    "invoice 42",
		Verification: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !entry.Inverse {
		t.Error("expected inverse rate for base-currency destination")
	}

	wantRate := decimal.NewFromInt(1).DivRound(rate, domain.ExchangeRateScale)
	if !entry.ExchangeRate.Equal(wantRate) {
		t.Errorf("expected rate %s, got %s", wantRate, entry.ExchangeRate)
	}

	if entry.Currency != "EUR" {
		t.Errorf("expected entry currency EUR, got %s", entry.Currency)
	}

	if entry.Status != domain.EntryStatusConfirmed {
		t.Errorf("expected confirmed, got %s", entry.Status)
	}

	to, _ := accRepo.GetByID(context.Background(), "acc-2")
	wantCredit := decimal.NewFromInt(10).Mul(wantRate).Round(domain.MoneyScale)
	if !to.Balance.Equal(wantCredit) {
		t.Errorf("expected destination credited %s, got %s", wantCredit, to.Balance)
	}
}

func TestPaymentUseCase_Pay_UnverifiedStaysPending(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "USD", 0))
	txMgr := mocks.NewMockTransactionManager()

	uc, ledgerRepo := newPaymentUseCase(t, accRepo, txMgr, "USD")
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	entry, err := uc.Pay(context.Background(), usecase.PaymentInput{
		AccountID:   "acc-1",
		AccountToID: "acc-2",
		Date:        "2026-03-14",
		Amount:      decimal.NewFromInt(10),
		Reference:   "invoice 42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.EntryStatusPending {
		t.Errorf("expected pending, got %s", entry.Status)
	}

	if entry.ApproverID != nil {
		t.Error("pending entry must not carry an approver stamp")
	}

	// Balances still move inside the same atomic unit.
	from, _ := accRepo.GetByID(context.Background(), "acc-1")
	if !from.Balance.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected source balance 90, got %s", from.Balance)
	}
}

func TestPaymentUseCase_Pay_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.PaymentInput
		wantField string
	}{
		{
			name: "missing reference",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-2", Date: "2026-03-14",
				Amount: decimal.NewFromInt(10),
			},
			wantField: "reference",
		},
		{
			name: "non-positive amount",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-2", Date: "2026-03-14",
				Amount: decimal.Zero, Reference: "x",
			},
			wantField: "amount",
		},
		{
			name: "negative exchange rate",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-2", Date: "2026-03-14",
				Amount: decimal.NewFromInt(10), ExchangeRate: ratePtr(-1), Reference: "x",
			},
			wantField: "exchange_rate",
		},
		{
			name: "explicit zero exchange rate",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-2", Date: "2026-03-14",
				Amount: decimal.NewFromInt(10), ExchangeRate: ratePtr(0), Reference: "x",
			},
			wantField: "exchange_rate",
		},
		{
			name: "not a calendar date",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-2", Date: "2026-02-30",
				Amount: decimal.NewFromInt(10), Reference: "x",
			},
			wantField: "date",
		},
		{
			name: "same account",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-1", Date: "2026-03-14",
				Amount: decimal.NewFromInt(10), Reference: "x",
			},
			wantField: "account_to_id",
		},
		{
			name: "destination does not exist",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "ghost", Date: "2026-03-14",
				Amount: decimal.NewFromInt(10), Reference: "x",
			},
			wantField: "account_to_id",
		},
		{
			name: "destination inactive",
			input: usecase.PaymentInput{
				AccountID: "acc-1", AccountToID: "acc-off", Date: "2026-03-14",
				Amount: decimal.NewFromInt(10), Reference: "x",
			},
			wantField: "account_to_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accRepo := mocks.NewMockAccountRepository()
			inactive := newAccount("acc-off", "USD", 0)
			inactive.Active = false
			accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "USD", 0), inactive)
			txMgr := mocks.NewMockTransactionManager()

			uc, _ := newPaymentUseCase(t, accRepo, txMgr, "USD")

			_, err := uc.Pay(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			fieldErrs, ok := domain.AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected FieldErrors, got %T", err)
			}

			if len(fieldErrs.On(tt.wantField)) == 0 {
				t.Errorf("expected error on %q, got %v", tt.wantField, fieldErrs)
			}

			if len(txMgr.Transactions()) != 0 {
				t.Error("validation failure must not open a transaction")
			}
		})
	}
}

func TestPaymentUseCase_Pay_CurrencyIncompatibility(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "EUR", 0))
	txMgr := mocks.NewMockTransactionManager()

	uc, _ := newPaymentUseCase(t, accRepo, txMgr, "USD")

	// Mismatched currencies with no rate supplied.
	_, err := uc.Pay(context.Background(), usecase.PaymentInput{
		AccountID:   "acc-1",
		AccountToID: "acc-2",
		Date:        "2026-03-14",
		Amount:      decimal.NewFromInt(10),
		Reference:   "x",
	})
	if err == nil {
		t.Fatal("expected currency incompatibility error")
	}

	fieldErrs, ok := domain.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T", err)
	}

	// Attached to the base object, naming the destination currency.
	baseMsgs := fieldErrs.On(domain.BaseField)
	if len(baseMsgs) != 1 {
		t.Fatalf("expected one base error, got %v", fieldErrs)
	}

	if want := "EUR"; !strings.Contains(baseMsgs[0], want) {
		t.Errorf("base error %q should name destination currency %s", baseMsgs[0], want)
	}

	if len(txMgr.Transactions()) != 0 {
		t.Error("no transaction must open for incompatible currencies")
	}
}

// A write failure after the ledger entry persisted must roll everything
// back and leave balances untouched.
func TestPaymentUseCase_Pay_RollbackOnBalanceWriteFailure(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "USD", 0))
	txMgr := mocks.NewMockTransactionManager()

	writeErr := errors.New("disk on fire")
	calls := 0
	accRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
		calls++
		if calls == 2 {
			return writeErr
		}
		return nil
	}

	uc, ledgerRepo := newPaymentUseCase(t, accRepo, txMgr, "USD")
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := uc.Pay(context.Background(), usecase.PaymentInput{
		AccountID:   "acc-1",
		AccountToID: "acc-2",
		Date:        "2026-03-14",
		Amount:      decimal.NewFromInt(10),
		Reference:   "x",
	})
	if err == nil {
		t.Fatal("expected persistence failure")
	}

	fieldErrs, ok := domain.AsFieldErrors(err)
	if !ok {
		t.Fatalf("persistence failure must surface as FieldErrors, got %T", err)
	}

	if len(fieldErrs.On(domain.BaseField)) == 0 {
		t.Errorf("expected base error, got %v", fieldErrs)
	}

	txs := txMgr.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected one transaction, got %d", len(txs))
	}

	if txs[0].Committed || !txs[0].RolledBack {
		t.Error("expected rollback, not commit")
	}

	// The mock map was never mutated: both balances survive.
	from, _ := accRepo.GetByID(context.Background(), "acc-1")
	if !from.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("source balance changed after rollback: %s", from.Balance)
	}
}

func TestPaymentUseCase_Pay_LedgerWriteFailureRollsBack(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(newAccount("acc-1", "USD", 100), newAccount("acc-2", "USD", 0))
	txMgr := mocks.NewMockTransactionManager()

	uc, ledgerRepo := newPaymentUseCase(t, accRepo, txMgr, "USD")
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("unique violation"))

	_, err := uc.Pay(context.Background(), usecase.PaymentInput{
		AccountID:   "acc-1",
		AccountToID: "acc-2",
		Date:        "2026-03-14",
		Amount:      decimal.NewFromInt(10),
		Reference:   "x",
	})
	if err == nil {
		t.Fatal("expected persistence failure")
	}

	from, _ := accRepo.GetByID(context.Background(), "acc-1")
	if !from.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("source balance changed after rollback: %s", from.Balance)
	}

	txs := txMgr.Transactions()
	if len(txs) != 1 || txs[0].Committed {
		t.Error("expected a rolled back transaction")
	}
}
