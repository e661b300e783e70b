package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditEntry is one immutable record of a balance change. A committed
// operation writes exactly one entry per account it touched; replaying the
// deltas for an account from creation reconstructs its current balance.
type AuditEntry struct {
	ID             string
	OperationID    string
	AccountID      string
	Delta          decimal.Decimal
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	AccountVersion int64
	CreatedAt      time.Time
}

// AuditFilter narrows ledger queries to one account and an optional time
// window.
type AuditFilter struct {
	AccountID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
