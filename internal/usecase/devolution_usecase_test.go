package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/ledgerhouse/cashbook/internal/domain"
	"github.com/ledgerhouse/cashbook/internal/usecase"
	"github.com/ledgerhouse/cashbook/internal/usecase/mocks"
)

func newExpense(id, accountID string, balance int64) *domain.Expense {
	return &domain.Expense{
		ID:        id,
		AccountID: accountID,
		Name:      "office supplies",
		Currency:  "USD",
		Total:     decimal.NewFromInt(100),
		Balance:   decimal.NewFromInt(balance),
		Active:    true,
	}
}

func newDevolutionUseCase(t *testing.T, expRepo *mocks.MockExpenseRepository, txMgr *mocks.MockTransactionManager) (*usecase.DevolutionUseCase, *mocks.MockLedgerRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)

	uc := usecase.NewDevolutionUseCase(
		txMgr,
		mocks.NewMockRetrier(),
		expRepo,
		ledgerRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockSessionProvider("user-7"),
	)

	return uc, ledgerRepo
}

func TestDevolutionUseCase_PayBack(t *testing.T) {
	expRepo := mocks.NewMockExpenseRepository()
	expRepo.Seed(newExpense("exp-1", "acc-1", 50))
	txMgr := mocks.NewMockTransactionManager()

	uc, ledgerRepo := newDevolutionUseCase(t, expRepo, txMgr)

	var created *domain.LedgerEntry
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
			created = entry
			return nil
		})

	result, err := uc.PayBack(context.Background(), usecase.DevolutionInput{
		AccountID: "exp-1",
		Amount:    decimal.NewFromInt(20),
		Date:      "2026-03-14",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Expense.Balance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected balance 30, got %s", result.Expense.Balance)
	}

	if created == nil {
		t.Fatal("expected a ledger entry")
	}

	if created.Operation != domain.OperationDevout {
		t.Errorf("expected devout operation, got %s", created.Operation)
	}

	if created.AccountID != "exp-1" {
		t.Errorf("entry must point at the expense, got %s", created.AccountID)
	}

	if created.AccountToID == nil || *created.AccountToID != "acc-1" {
		t.Error("entry must point back at the originating account")
	}

	if !created.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("devout entries carry rate 1, got %s", created.ExchangeRate)
	}

	if created.Status != domain.EntryStatusPending {
		t.Errorf("expected pending, got %s", created.Status)
	}

	if created.Reference != "devolution office supplies" {
		t.Errorf("expected defaulted reference, got %q", created.Reference)
	}

	txs := txMgr.Transactions()
	if len(txs) != 1 || !txs[0].Committed {
		t.Error("expected exactly one committed transaction")
	}
}

func TestDevolutionUseCase_PayBack_Verified(t *testing.T) {
	expRepo := mocks.NewMockExpenseRepository()
	expRepo.Seed(newExpense("exp-1", "acc-1", 50))
	txMgr := mocks.NewMockTransactionManager()

	uc, ledgerRepo := newDevolutionUseCase(t, expRepo, txMgr)

	var created *domain.LedgerEntry
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
			created = entry
			return nil
		})

	_, err := uc.PayBack(context.Background(), usecase.DevolutionInput{
		AccountID:    "exp-1",
		Amount:       decimal.NewFromInt(20),
		Verification: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != domain.EntryStatusConfirmed {
		t.Errorf("expected confirmed, got %s", created.Status)
	}

	if created.ApproverID == nil || *created.ApproverID != "user-7" {
		t.Error("expected approver stamp from acting session")
	}

	if created.ApproverDatetime == nil {
		t.Error("expected approver timestamp")
	}
}

func TestDevolutionUseCase_PayBack_Failures(t *testing.T) {
	tests := []struct {
		name      string
		seed      func(*mocks.MockExpenseRepository)
		input     usecase.DevolutionInput
		wantField string
	}{
		{
			name: "missing expense id",
			seed: func(m *mocks.MockExpenseRepository) {},
			input: usecase.DevolutionInput{
				Amount: decimal.NewFromInt(10),
			},
			wantField: "account_id",
		},
		{
			name: "non-positive amount",
			seed: func(m *mocks.MockExpenseRepository) {
				m.Seed(newExpense("exp-1", "acc-1", 50))
			},
			input: usecase.DevolutionInput{
				AccountID: "exp-1",
				Amount:    decimal.Zero,
			},
			wantField: "amount",
		},
		{
			name: "unknown expense",
			seed: func(m *mocks.MockExpenseRepository) {},
			input: usecase.DevolutionInput{
				AccountID: "ghost",
				Amount:    decimal.NewFromInt(10),
			},
			wantField: "account_id",
		},
		{
			name: "inactive expense",
			seed: func(m *mocks.MockExpenseRepository) {
				e := newExpense("exp-1", "acc-1", 50)
				e.Active = false
				m.Seed(e)
			},
			input: usecase.DevolutionInput{
				AccountID: "exp-1",
				Amount:    decimal.NewFromInt(10),
			},
			wantField: "account_id",
		},
		{
			name: "amount exceeds outstanding balance",
			seed: func(m *mocks.MockExpenseRepository) {
				m.Seed(newExpense("exp-1", "acc-1", 50))
			},
			input: usecase.DevolutionInput{
				AccountID: "exp-1",
				Amount:    decimal.NewFromInt(51),
			},
			wantField: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expRepo := mocks.NewMockExpenseRepository()
			tt.seed(expRepo)
			txMgr := mocks.NewMockTransactionManager()

			uc, _ := newDevolutionUseCase(t, expRepo, txMgr)

			_, err := uc.PayBack(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			fieldErrs, ok := domain.AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected FieldErrors, got %T", err)
			}

			if len(fieldErrs.On(tt.wantField)) == 0 {
				t.Errorf("expected error on %q, got %v", tt.wantField, fieldErrs)
			}

			if len(txMgr.Transactions()) != 0 {
				t.Error("failed validation must not open a transaction")
			}
		})
	}
}

// The expense balance write succeeds, the ledger write fails: both must
// roll back and the failure surfaces on the ledger field.
func TestDevolutionUseCase_PayBack_LedgerFailureRollsBack(t *testing.T) {
	expRepo := mocks.NewMockExpenseRepository()
	expRepo.Seed(newExpense("exp-1", "acc-1", 50))
	txMgr := mocks.NewMockTransactionManager()

	balanceWrites := 0
	expRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
		balanceWrites++
		return nil
	}

	uc, ledgerRepo := newDevolutionUseCase(t, expRepo, txMgr)
	ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := uc.PayBack(context.Background(), usecase.DevolutionInput{
		AccountID: "exp-1",
		Amount:    decimal.NewFromInt(20),
	})
	if err == nil {
		t.Fatal("expected persistence failure")
	}

	fieldErrs, ok := domain.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T", err)
	}

	if len(fieldErrs.On("ledger")) == 0 {
		t.Errorf("expected error on ledger, got %v", fieldErrs)
	}

	if balanceWrites != 1 {
		t.Errorf("expected the balance write to have been attempted once, got %d", balanceWrites)
	}

	txs := txMgr.Transactions()
	if len(txs) != 1 || txs[0].Committed || !txs[0].RolledBack {
		t.Error("expected a rolled back transaction")
	}

	// In-memory expense untouched.
	expense, _ := expRepo.GetByID(context.Background(), "exp-1")
	if !expense.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expense balance changed after rollback: %s", expense.Balance)
	}
}

func TestDevolutionUseCase_PayBack_BalanceWriteFailure(t *testing.T) {
	expRepo := mocks.NewMockExpenseRepository()
	expRepo.Seed(newExpense("exp-1", "acc-1", 50))
	txMgr := mocks.NewMockTransactionManager()

	expRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
		return errors.New("row vanished")
	}

	uc, _ := newDevolutionUseCase(t, expRepo, txMgr)

	_, err := uc.PayBack(context.Background(), usecase.DevolutionInput{
		AccountID: "exp-1",
		Amount:    decimal.NewFromInt(20),
	})
	if err == nil {
		t.Fatal("expected persistence failure")
	}

	fieldErrs, ok := domain.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T", err)
	}

	if len(fieldErrs.On("expense")) == 0 {
		t.Errorf("expected error on expense, got %v", fieldErrs)
	}

	txs := txMgr.Transactions()
	if len(txs) != 1 || txs[0].Committed {
		t.Error("expected a rolled back transaction")
	}
}
