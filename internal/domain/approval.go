package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalState string

const (
	ApprovalPending  ApprovalState = "PENDING"
	ApprovalApproved ApprovalState = "APPROVED"
	ApprovalRejected ApprovalState = "REJECTED"
)

// Decision is what an approver submits.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Approval gates a transfer behind a second-party confirmation. The subject
// transfer executes only on the PENDING -> APPROVED transition; both
// APPROVED and REJECTED are terminal.
type Approval struct {
	ID                   string
	Kind                 OperationKind
	SourceAccountID      *string
	DestinationAccountID *string
	Amount               decimal.Decimal
	RequestedBy          string
	Note                 string
	State                ApprovalState
	DecidedBy            *string
	DecidedAt            *time.Time
	OperationID          *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the approval request shape.
func (a *Approval) Validate() error {
	if a.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if a.SourceAccountID == nil && a.DestinationAccountID == nil {
		return ErrNoAccounts
	}

	if a.SourceAccountID != nil && a.DestinationAccountID != nil &&
		*a.SourceAccountID == *a.DestinationAccountID {
		return ErrSameAccount
	}

	if !a.Kind.Valid() {
		return ErrInvalidKind
	}

	return nil
}

// CanDecide checks whether decidedBy may decide this approval now.
// Segregation of duties: the party who submitted the request cannot confirm
// it (e.g. a biller handing cash to a manager cannot also sign for receipt).
func (a *Approval) CanDecide(decidedBy string) error {
	if a.State != ApprovalPending {
		return ErrAlreadyDecided
	}

	if decidedBy == a.RequestedBy {
		return ErrUnauthorizedApprover
	}

	return nil
}
