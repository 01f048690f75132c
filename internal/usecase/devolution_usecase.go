package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
)

// DevolutionUseCase pays back part of an expense: the expense's
// outstanding balance shrinks and a devout ledger entry records the
// reversal, both in one transaction.
type DevolutionUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	expenseRepo ExpenseRepository
	ledgerRepo  LedgerRepository
	idGen       IDGenerator
	session     SessionProvider
}

// NewDevolutionUseCase creates a new DevolutionUseCase. retrier may be
// nil.
func NewDevolutionUseCase(
	txManager TransactionManager,
	retrier Retrier,
	expenseRepo ExpenseRepository,
	ledgerRepo LedgerRepository,
	idGen IDGenerator,
	session SessionProvider,
) *DevolutionUseCase {
	return &DevolutionUseCase{
		txManager:   txManager,
		retrier:     retrier,
		expenseRepo: expenseRepo,
		ledgerRepo:  ledgerRepo,
		idGen:       idGen,
		session:     session,
	}
}

// DevolutionInput represents input for paying back an expense.
// AccountID names the expense being reversed. Date defaults to today.
type DevolutionInput struct {
	AccountID    string
	Amount       decimal.Decimal
	Date         string
	Reference    string
	Verification bool
}

// DevolutionResult is the pair a successful devolution returns.
type DevolutionResult struct {
	Expense *domain.Expense
	Entry   *domain.LedgerEntry
}

// PayBack validates the devolution, then decrements the expense's
// outstanding balance and persists the devout ledger entry atomically.
// Errors from either entity surface on the returned collection; the
// caller never inspects nested objects.
func (uc *DevolutionUseCase) PayBack(ctx context.Context, input DevolutionInput) (*DevolutionResult, error) {
	fieldErrs := domain.FieldErrors{}

	if input.AccountID == "" {
		fieldErrs.Add("account_id", "is required")
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		fieldErrs.AddErr("amount", err)
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != "" {
		parsed, err := domain.ParseDate(input.Date)
		if err != nil {
			fieldErrs.AddErr("date", err)
		} else {
			date = parsed
		}
	}

	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	// Resolved before the transaction so an inactive or missing expense
	// performs zero writes.
	expense, err := uc.expenseRepo.GetActiveByID(ctx, input.AccountID)
	if err != nil {
		fieldErrs.AddErr("account_id", err)
		return nil, fieldErrs
	}

	if err := expense.ValidateReversal(input.Amount); err != nil {
		fieldErrs.AddErr("amount", err)
		return nil, fieldErrs
	}

	var result *DevolutionResult
	run := func() error {
		var txErr error
		result, txErr = uc.payBackTx(ctx, input, date)
		return txErr
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}

	if err != nil {
		if fe, ok := domain.AsFieldErrors(err); ok {
			return nil, fe
		}

		fieldErrs.AddErr(domain.BaseField, err)
		return nil, fieldErrs
	}

	return result, nil
}

func (uc *DevolutionUseCase) payBackTx(ctx context.Context, input DevolutionInput, date time.Time) (*DevolutionResult, error) {
	fieldErrs := domain.FieldErrors{}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	expense, err := uc.expenseRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	reversal := ExpenseReversal{Expense: expense}

	// Re-validated under the row lock; another devolution may have
	// drained the balance since the pre-check.
	if err := reversal.ValidateReversal(input.Amount); err != nil {
		fieldErrs.AddErr("amount", err)
		return nil, fieldErrs
	}

	now := time.Now().UTC()
	newBalance := reversal.ApplyReversal(input.Amount)

	// The expense must be saved before the ledger entry references it.
	if err := uc.expenseRepo.UpdateBalance(ctx, tx, reversal.TargetID(), newBalance, now); err != nil {
		fieldErrs.AddErr("expense", err)
		return nil, fieldErrs
	}

	reference := input.Reference
	if reference == "" {
		reference = "devolution " + expense.Name
	}

	entry := &domain.LedgerEntry{
		ID:           uc.idGen.Generate(),
		AccountID:    expense.ID,
		AccountToID:  &expense.AccountID,
		Amount:       input.Amount.Abs(),
		Currency:     expense.Currency,
		ExchangeRate: decimal.NewFromInt(1),
		Operation:    domain.OperationDevout,
		Status:       domain.EntryStatusPending,
		Date:         date,
		Reference:    reference,
		CreatedAt:    now,
	}

	if input.Verification {
		approverID, err := uc.session.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}

		entry.Status = domain.EntryStatusConfirmed
		entry.ApproverID = &approverID
		entry.ApproverDatetime = &now
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.Create(ctx, tx, entry); err != nil {
		fieldErrs.AddErr("ledger", err)
		return nil, fieldErrs
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	expense.Balance = newBalance
	expense.UpdatedAt = now

	return &DevolutionResult{Expense: expense, Entry: entry}, nil
}
