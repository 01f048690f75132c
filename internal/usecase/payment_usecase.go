package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
)

// PaymentUseCase moves funds between two accounts and records the
// movement as a ledger entry, all inside one transaction.
type PaymentUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	accountRepo  AccountRepository
	ledgerRepo   LedgerRepository
	idGen        IDGenerator
	session      SessionProvider
	cache        Cache
	baseCurrency string
}

// NewPaymentUseCase creates a new PaymentUseCase. retrier and cache may
// be nil.
func NewPaymentUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
	idGen IDGenerator,
	session SessionProvider,
	cache Cache,
	baseCurrency string,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:    txManager,
		retrier:      retrier,
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		idGen:        idGen,
		session:      session,
		cache:        cache,
		baseCurrency: baseCurrency,
	}
}

// PaymentInput represents input for creating a payment. Date is a
// calendar date in YYYY-MM-DD form. A nil ExchangeRate means no rate
// was supplied: same-currency movements imply 1 and differing
// currencies are rejected as incompatible. A supplied rate must be
// positive, zero included.
type PaymentInput struct {
	AccountID    string
	AccountToID  string
	Date         string
	Amount       decimal.Decimal
	ExchangeRate *decimal.Decimal
	Reference    string
	Verification bool
}

// Pay validates the input, then debits the source account, credits the
// destination account with the converted amount and persists the ledger
// entry atomically. Validation failures never touch storage; persistence
// failures roll back and are merged into the same field-error
// collection.
func (uc *PaymentUseCase) Pay(ctx context.Context, input PaymentInput) (*domain.LedgerEntry, error) {
	fieldErrs := domain.FieldErrors{}

	if input.AccountID == "" {
		fieldErrs.Add("account_id", "is required")
	}

	if input.AccountToID == "" {
		fieldErrs.Add("account_to_id", "is required")
	}

	if input.AccountID != "" && input.AccountID == input.AccountToID {
		fieldErrs.AddErr("account_to_id", domain.ErrSameAccount)
	}

	if err := domain.ValidateReference(input.Reference); err != nil {
		fieldErrs.AddErr("reference", err)
	}

	date, err := domain.ParseDate(input.Date)
	if err != nil {
		fieldErrs.AddErr("date", err)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		fieldErrs.AddErr("amount", err)
	}

	if input.ExchangeRate != nil {
		if err := domain.ValidateExchangeRate(*input.ExchangeRate); err != nil {
			fieldErrs.AddErr("exchange_rate", err)
		}
	}

	var from, to *domain.Account

	if input.AccountID != "" {
		if from, err = uc.accountRepo.GetActiveByID(ctx, input.AccountID); err != nil {
			fieldErrs.AddErr("account_id", err)
		}
	}

	if input.AccountToID != "" && input.AccountToID != input.AccountID {
		if to, err = uc.accountRepo.GetActiveByID(ctx, input.AccountToID); err != nil {
			fieldErrs.AddErr("account_to_id", err)
		}
	}

	var exchange *domain.CurrencyExchange
	if from != nil && to != nil {
		var suppliedRate decimal.Decimal
		if input.ExchangeRate != nil {
			suppliedRate = *input.ExchangeRate
		}

		exchange = domain.NewCurrencyExchange(from, to, suppliedRate, uc.baseCurrency)
		if !exchange.Valid() {
			fieldErrs.Add(domain.BaseField, fmt.Sprintf("no valid exchange rate for %s", exchange.Currency()))
		}
	}

	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	var entry *domain.LedgerEntry
	run := func() error {
		var txErr error
		entry, txErr = uc.payTx(ctx, input, date, exchange)
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

	uc.invalidateAccounts(ctx, input.AccountID, input.AccountToID)

	return entry, nil
}

func (uc *PaymentUseCase) payTx(
	ctx context.Context,
	input PaymentInput,
	date time.Time,
	exchange *domain.CurrencyExchange,
) (*domain.LedgerEntry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock accounts in sorted order (deadlock prevention).
	ids := []string{input.AccountID, input.AccountToID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	var from, to *domain.Account
	for _, account := range accounts {
		switch account.ID {
		case input.AccountID:
			from = account
		case input.AccountToID:
			to = account
		}
	}

	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}

	if err := from.ValidateMovement(); err != nil {
		return nil, err
	}

	if err := to.ValidateMovement(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	convRate := exchange.ExchangeRate()
	credited := input.Amount.Mul(convRate).Round(domain.MoneyScale)

	entry := &domain.LedgerEntry{
		ID:           uc.idGen.Generate(),
		AccountID:    from.ID,
		AccountToID:  &to.ID,
		Amount:       input.Amount,
		Currency:     exchange.Currency(),
		ExchangeRate: convRate,
		Inverse:      exchange.Inverse(),
		Operation:    domain.OperationPayment,
		Status:       domain.EntryStatusPending,
		Date:         date,
		Reference:    input.Reference,
		CreatedAt:    now,
	}

	if !to.RequiresConciliation(input.Verification) {
		entry.Status = domain.EntryStatusConfirmed
	}

	if entry.Status == domain.EntryStatusConfirmed && !entry.Approved() {
		approverID, err := uc.session.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}

		entry.ApproverID = &approverID
		entry.ApproverDatetime = &now
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	// Debit source, credit destination as part of the same atomic unit.
	if err := uc.accountRepo.UpdateBalance(ctx, tx, from.ID, from.ApplyDebit(input.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, to.ID, to.ApplyCredit(credited), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *PaymentUseCase) invalidateAccounts(ctx context.Context, ids ...string) {
	if uc.cache == nil {
		return
	}

	for _, id := range ids {
		_ = uc.cache.Delete(ctx, accountCacheKey(id))
	}
}

func accountCacheKey(id string) string {
	return "account:" + id
}
