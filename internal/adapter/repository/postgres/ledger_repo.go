package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerhouse/cashbook/internal/domain"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository. Rows are
// append-only; the only column that ever changes after insert is the
// status trio.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const ledgerColumns = `id, account_id, account_to_id, amount, currency, exchange_rate, inverse,
	operation, status, date, reference, approver_id, approver_datetime, created_at`

// Create inserts a new ledger entry.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO account_ledgers (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var approverDatetime pgtype.Timestamptz
	if entry.ApproverDatetime != nil {
		approverDatetime = timeToPgTimestamptz(*entry.ApproverDatetime)
	}

	_, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.AccountToID,
		decimalToNumeric(entry.Amount),
		entry.Currency,
		decimalToNumeric(entry.ExchangeRate),
		entry.Inverse,
		string(entry.Operation),
		string(entry.Status),
		pgtype.Date{Time: entry.Date, Valid: true},
		entry.Reference,
		entry.ApproverID,
		approverDatetime,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByID retrieves a ledger entry by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM account_ledgers WHERE id = $1`

	return scanLedgerEntry(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a ledger entry by ID with a FOR UPDATE lock.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + ledgerColumns + ` FROM account_ledgers WHERE id = $1 FOR UPDATE`

	return scanLedgerEntry(pgxTx.QueryRow(ctx, query, id))
}

// ListByAccount lists entries where the account appears on either side,
// newest first.
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM account_ledgers
		WHERE account_id = $1 OR account_to_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntryRow(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateStatus persists the status trio of an entry.
func (r *LedgerRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE account_ledgers
		SET status = $2, approver_id = $3, approver_datetime = $4
		WHERE id = $1
	`

	var approverDatetime pgtype.Timestamptz
	if entry.ApproverDatetime != nil {
		approverDatetime = timeToPgTimestamptz(*entry.ApproverDatetime)
	}

	tag, err := pgxTx.Exec(ctx, query, entry.ID, string(entry.Status), entry.ApproverID, approverDatetime)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// FindUnreconciledExpenses returns the IDs of expenses whose paid-back
// amount no longer matches the sum of their non-cancelled devolution
// entries.
func (r *LedgerRepository) FindUnreconciledExpenses(ctx context.Context) ([]string, error) {
	query := `
		SELECT e.id
		FROM expenses e
		LEFT JOIN (
			SELECT account_id, SUM(amount) AS paid_back
			FROM account_ledgers
			WHERE operation = 'devout' AND status <> 'cancelled'
			GROUP BY account_id
		) l ON l.account_id = e.id
		WHERE e.total - e.balance <> COALESCE(l.paid_back, 0)
		ORDER BY e.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	entry, err := scanLedgerEntryRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

func scanLedgerEntryRow(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		entry            domain.LedgerEntry
		amount           pgtype.Numeric
		exchangeRate     pgtype.Numeric
		operation        string
		status           string
		date             pgtype.Date
		approverDatetime pgtype.Timestamptz
		createdAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.AccountToID,
		&amount,
		&entry.Currency,
		&exchangeRate,
		&entry.Inverse,
		&operation,
		&status,
		&date,
		&entry.Reference,
		&entry.ApproverID,
		&approverDatetime,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.ExchangeRate = numericToDecimal(exchangeRate)
	entry.Operation = domain.Operation(operation)
	entry.Status = domain.EntryStatus(status)
	entry.Date = date.Time
	entry.CreatedAt = createdAt.Time

	if approverDatetime.Valid {
		entry.ApproverDatetime = &approverDatetime.Time
	}

	return &entry, nil
}
