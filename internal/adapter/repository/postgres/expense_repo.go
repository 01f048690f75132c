package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerhouse/cashbook/internal/domain"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, account_id, name, currency, total, balance, active, version, created_at, updated_at`

// Create creates a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		expense.ID,
		expense.AccountID,
		expense.Name,
		expense.Currency,
		decimalToNumeric(expense.Total),
		decimalToNumeric(expense.Balance),
		expense.Active,
		expense.Version,
		timeToPgTimestamptz(expense.CreatedAt),
		timeToPgTimestamptz(expense.UpdatedAt),
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	return scanExpense(r.pool.QueryRow(ctx, query, id))
}

// GetActiveByID retrieves an expense by ID, requiring it to be active.
func (r *ExpenseRepository) GetActiveByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND active`

	return scanExpense(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an expense by ID with a FOR UPDATE lock.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 FOR UPDATE`

	return scanExpense(pgxTx.QueryRow(ctx, query, id))
}

// UpdateBalance updates the outstanding balance of an expense.
func (r *ExpenseRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE expenses
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense   domain.Expense
		total     pgtype.Numeric
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&expense.ID,
		&expense.AccountID,
		&expense.Name,
		&expense.Currency,
		&total,
		&balance,
		&expense.Active,
		&expense.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	expense.Total = numericToDecimal(total)
	expense.Balance = numericToDecimal(balance)
	expense.CreatedAt = createdAt.Time
	expense.UpdatedAt = updatedAt.Time

	return &expense, nil
}
