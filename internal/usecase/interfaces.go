package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetActiveByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// ExpenseRepository defines data access for expense movements.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	GetActiveByID(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Expense, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// LedgerRepository defines data access for ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	UpdateStatus(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	FindUnreconciledExpenses(ctx context.Context) ([]string, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries transient storage failures such as deadlocks.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// SessionProvider resolves the acting user for approver stamping. The
// identity travels with the request context, never as global state.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
