package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ledgerhouse/cashbook/internal/domain"
)

// ErrInconsistentLedger is returned when devout entries no longer match
// the expenses they paid back.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: devolutions do not match expense balances")

// LedgerUseCase exposes the read side of the ledger and the approval
// workflow, the only mutation a committed entry ever sees.
type LedgerUseCase struct {
	txManager   TransactionManager
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	expenseRepo ExpenseRepository
	session     SessionProvider
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	expenseRepo ExpenseRepository,
	session SessionProvider,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		expenseRepo: expenseRepo,
		session:     session,
	}
}

// GetEntry retrieves a ledger entry by ID.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// ListEntriesByAccountInput represents input for listing entries.
type ListEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListEntriesByAccount lists entries for an account.
func (uc *LedgerUseCase) ListEntriesByAccount(ctx context.Context, input ListEntriesByAccountInput) ([]*domain.LedgerEntry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.ledgerRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// Approve confirms a pending entry and stamps the acting user as its
// approver.
func (uc *LedgerUseCase) Approve(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	approverID, err := uc.session.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.Approve(approverID, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.UpdateStatus(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// Cancel nullifies an entry and undoes its balance side effects in the
// same transaction: payments give the debit back to the source and take
// the credited amount from the destination, devolutions restore the
// expense's outstanding balance.
func (uc *LedgerUseCase) Cancel(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.Cancel(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	switch entry.Operation {
	case domain.OperationPayment:
		if err := uc.reversePayment(ctx, tx, entry, now); err != nil {
			return nil, err
		}
	case domain.OperationDevout:
		if err := uc.reverseDevolution(ctx, tx, entry, now); err != nil {
			return nil, err
		}
	}

	if err := uc.ledgerRepo.UpdateStatus(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *LedgerUseCase) reversePayment(ctx context.Context, tx Transaction, entry *domain.LedgerEntry, now time.Time) error {
	if entry.AccountToID == nil {
		return domain.ErrAccountNotFound
	}

	ids := []string{entry.AccountID, *entry.AccountToID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	for _, account := range accounts {
		switch account.ID {
		case entry.AccountID:
			// The original debit comes back.
			if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyCredit(entry.Amount), now); err != nil {
				return err
			}
		case *entry.AccountToID:
			// The credited amount is recovered from the rate snapshot.
			credited := entry.Amount.Mul(entry.ExchangeRate).Round(domain.MoneyScale)
			if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDebit(credited), now); err != nil {
				return err
			}
		}
	}

	return nil
}

func (uc *LedgerUseCase) reverseDevolution(ctx context.Context, tx Transaction, entry *domain.LedgerEntry, now time.Time) error {
	expense, err := uc.expenseRepo.GetByIDForUpdate(ctx, tx, entry.AccountID)
	if err != nil {
		return err
	}

	restored := expense.Balance.Add(entry.Amount)

	return uc.expenseRepo.UpdateBalance(ctx, tx, expense.ID, restored, now)
}

// CheckConsistency verifies that every expense's paid-back total still
// matches its non-cancelled devout entries.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, []string, error) {
	mismatched, err := uc.ledgerRepo.FindUnreconciledExpenses(ctx)
	if err != nil {
		return false, nil, err
	}

	if len(mismatched) > 0 {
		return false, mismatched, ErrInconsistentLedger
	}

	return true, nil, nil
}
