package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation identifies the kind of movement a ledger entry records.
type Operation string

const (
	OperationPayment Operation = "payment"
	OperationDevout  Operation = "devout"
)

// EntryStatus is the approval state of a ledger entry. It is the only
// field a committed entry ever changes.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusConfirmed EntryStatus = "confirmed"
	EntryStatusCancelled EntryStatus = "cancelled"
)

// LedgerEntry is the immutable audit record of one money movement.
// Amount is denominated in Currency (the destination account's currency)
// and the exchange rate is a snapshot taken at creation time; it is
// never recomputed even if account currencies change later.
type LedgerEntry struct {
	ID               string
	AccountID        string
	AccountToID      *string
	Amount           decimal.Decimal
	Currency         string
	ExchangeRate     decimal.Decimal
	Inverse          bool
	Operation        Operation
	Status           EntryStatus
	Date             time.Time
	Reference        string
	ApproverID       *string
	ApproverDatetime *time.Time
	CreatedAt        time.Time
}

// Validate checks the entry invariants before it is persisted.
func (e *LedgerEntry) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if e.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidExchangeRate
	}

	return nil
}

// Approved reports whether the entry already carries an approver stamp.
func (e *LedgerEntry) Approved() bool {
	return e.ApproverID != nil
}

// Approve stamps the approver and confirms a pending entry.
func (e *LedgerEntry) Approve(approverID string, at time.Time) error {
	if e.Status == EntryStatusCancelled {
		return ErrEntryCancelled
	}

	if e.Status != EntryStatusPending {
		return ErrEntryNotPending
	}

	e.Status = EntryStatusConfirmed
	e.ApproverID = &approverID
	e.ApproverDatetime = &at

	return nil
}

// Cancel marks the entry cancelled. Confirmed payment entries can still
// be cancelled; the caller is responsible for reversing the balance
// adjustments in the same transaction.
func (e *LedgerEntry) Cancel() error {
	if e.Status == EntryStatusCancelled {
		return ErrEntryCancelled
	}

	e.Status = EntryStatusCancelled

	return nil
}

// CanDestroy reports whether the entry may still be cancelled.
func (e *LedgerEntry) CanDestroy() bool {
	return e.Status != EntryStatusCancelled
}
