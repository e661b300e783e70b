package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind classifies why money moved.
type OperationKind string

const (
	KindFundTransfer   OperationKind = "FUND_TRANSFER"
	KindSaleSettlement OperationKind = "SALE_SETTLEMENT"
	KindExpense        OperationKind = "EXPENSE"
	KindCashHandover   OperationKind = "CASH_HANDOVER"
	KindRefund         OperationKind = "REFUND"
)

// Valid reports whether k is a known operation kind.
func (k OperationKind) Valid() bool {
	switch k {
	case KindFundTransfer, KindSaleSettlement, KindExpense, KindCashHandover, KindRefund:
		return true
	}
	return false
}

// RequiresApproval reports whether operations of this kind must pass through
// a second-party approval before execution.
func (k OperationKind) RequiresApproval() bool {
	return k == KindCashHandover || k == KindRefund
}

// OperationStatus is the terminal-or-pending state of an operation.
type OperationStatus string

const (
	StatusPending   OperationStatus = "PENDING"
	StatusCommitted OperationStatus = "COMMITTED"
	StatusRejected  OperationStatus = "REJECTED"
	StatusFailed    OperationStatus = "FAILED"
)

// Rejection reason codes persisted on REJECTED operations.
const (
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
)

// Operation is the atomic unit of money movement: a debit+credit pair, or a
// single-sided external flow when one side is nil (a sale settlement credits
// with no source; an expense debits with no destination).
type Operation struct {
	ID                   string
	SourceAccountID      *string
	DestinationAccountID *string
	Amount               decimal.Decimal
	Kind                 OperationKind
	Status               OperationStatus
	IdempotencyKey       string
	FailureReason        string
	CreatedAt            time.Time
}

// Validate checks the operation shape before any lock is taken.
func (o *Operation) Validate() error {
	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if o.SourceAccountID == nil && o.DestinationAccountID == nil {
		return ErrNoAccounts
	}

	if o.SourceAccountID != nil && o.DestinationAccountID != nil &&
		*o.SourceAccountID == *o.DestinationAccountID {
		return ErrSameAccount
	}

	if !o.Kind.Valid() {
		return ErrInvalidKind
	}

	if o.IdempotencyKey == "" {
		return ErrMissingIdempotencyKey
	}

	return nil
}

// SameParameters reports whether other describes the same transfer intent.
// A replayed idempotency key with different parameters is a client bug, not
// a retry.
func (o *Operation) SameParameters(other *Operation) bool {
	return strPtrEqual(o.SourceAccountID, other.SourceAccountID) &&
		strPtrEqual(o.DestinationAccountID, other.DestinationAccountID) &&
		o.Amount.Equal(other.Amount) &&
		o.Kind == other.Kind
}

// RejectionError maps a persisted rejection reason back to its sentinel, so
// a replayed REJECTED operation surfaces the original error.
func (o *Operation) RejectionError() error {
	if o.Status != StatusRejected {
		return nil
	}

	switch o.FailureReason {
	case ReasonInsufficientFunds:
		return ErrInsufficientFunds
	default:
		return ErrStorageConflict
	}
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
