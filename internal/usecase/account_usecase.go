package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
)

// AccountUseCase handles account and expense registration and reads.
type AccountUseCase struct {
	accountRepo AccountRepository
	expenseRepo ExpenseRepository
	idGen       IDGenerator
	cache       Cache
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil.
func NewAccountUseCase(accountRepo AccountRepository, expenseRepo ExpenseRepository, idGen IDGenerator, cache Cache) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		expenseRepo: expenseRepo,
		idGen:       idGen,
		cache:       cache,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name           string
	Currency       string
	Kind           domain.AccountKind
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new active account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	fieldErrs := domain.FieldErrors{}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		fieldErrs.AddErr("name", err)
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		fieldErrs.AddErr("currency", err)
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.AccountKindGeneric
	}

	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Currency:  input.Currency,
		Balance:   input.InitialBalance,
		Kind:      kind,
		Active:    true,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID, through the cache when one is
// configured.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, accountCacheKey(id)); err == nil && raw != nil {
			var account domain.Account
			if err := json.Unmarshal(raw, &account); err == nil {
				return &account, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(account); err == nil {
			_ = uc.cache.Set(ctx, accountCacheKey(id), raw, accountCacheTTL)
		}
	}

	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, limit, offset)
}

// CreateExpenseInput represents input for registering an expense
// movement eligible for devolutions.
type CreateExpenseInput struct {
	AccountID string
	Name      string
	Currency  string
	Total     decimal.Decimal
}

// CreateExpense registers an expense with its full amount outstanding.
func (uc *AccountUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	fieldErrs := domain.FieldErrors{}

	if input.AccountID == "" {
		fieldErrs.Add("account_id", "is required")
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		fieldErrs.AddErr("name", err)
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		fieldErrs.AddErr("currency", err)
	}

	if err := domain.ValidateAmount(input.Total); err != nil {
		fieldErrs.AddErr("total", err)
	}

	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	if _, err := uc.accountRepo.GetActiveByID(ctx, input.AccountID); err != nil {
		fieldErrs.AddErr("account_id", err)
		return nil, fieldErrs
	}

	now := time.Now().UTC()

	expense := &domain.Expense{
		ID:        uc.idGen.Generate(),
		AccountID: input.AccountID,
		Name:      input.Name,
		Currency:  input.Currency,
		Total:     input.Total,
		Balance:   input.Total,
		Active:    true,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// GetExpense retrieves an expense by ID.
func (uc *AccountUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return uc.expenseRepo.GetByID(ctx, id)
}
