package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string          `json:"id"`
	OwnerType   string          `json:"owner_type"`
	OwnerID     string          `json:"owner_id"`
	Balance     decimal.Decimal `json:"balance"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Version     int64           `json:"version"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		OwnerType:   string(a.OwnerType),
		OwnerID:     a.OwnerID,
		Balance:     a.Balance,
		CreditLimit: a.CreditLimit,
		Version:     a.Version,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// OperationResponse represents a transfer operation in API responses.
type OperationResponse struct {
	ID                   string          `json:"id"`
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 string          `json:"kind"`
	Status               string          `json:"status"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// OperationFromDomain converts a domain operation to a response.
func OperationFromDomain(op *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:                   op.ID,
		SourceAccountID:      op.SourceAccountID,
		DestinationAccountID: op.DestinationAccountID,
		Amount:               op.Amount,
		Kind:                 string(op.Kind),
		Status:               string(op.Status),
		FailureReason:        op.FailureReason,
		CreatedAt:            op.CreatedAt,
	}
}

// OperationsFromDomain converts domain operations to responses.
func OperationsFromDomain(ops []*domain.Operation) []*OperationResponse {
	result := make([]*OperationResponse, len(ops))
	for i, op := range ops {
		result[i] = OperationFromDomain(op)
	}
	return result
}

// ApprovalResponse represents an approval workflow in API responses.
type ApprovalResponse struct {
	ID                   string          `json:"id"`
	Kind                 string          `json:"kind"`
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	RequestedBy          string          `json:"requested_by"`
	Note                 string          `json:"note,omitempty"`
	State                string          `json:"state"`
	DecidedBy            *string         `json:"decided_by,omitempty"`
	DecidedAt            *time.Time      `json:"decided_at,omitempty"`
	OperationID          *string         `json:"operation_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ApprovalFromDomain converts a domain approval to a response.
func ApprovalFromDomain(a *domain.Approval) *ApprovalResponse {
	return &ApprovalResponse{
		ID:                   a.ID,
		Kind:                 string(a.Kind),
		SourceAccountID:      a.SourceAccountID,
		DestinationAccountID: a.DestinationAccountID,
		Amount:               a.Amount,
		RequestedBy:          a.RequestedBy,
		Note:                 a.Note,
		State:                string(a.State),
		DecidedBy:            a.DecidedBy,
		DecidedAt:            a.DecidedAt,
		OperationID:          a.OperationID,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// ApprovalsFromDomain converts domain approvals to responses.
func ApprovalsFromDomain(approvals []*domain.Approval) []*ApprovalResponse {
	result := make([]*ApprovalResponse, len(approvals))
	for i, a := range approvals {
		result[i] = ApprovalFromDomain(a)
	}
	return result
}

// AuditEntryResponse represents an audit log entry in API responses.
type AuditEntryResponse struct {
	ID             string          `json:"id"`
	OperationID    string          `json:"operation_id"`
	AccountID      string          `json:"account_id"`
	Delta          decimal.Decimal `json:"delta"`
	BalanceBefore  decimal.Decimal `json:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	AccountVersion int64           `json:"account_version"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AuditEntryFromDomain converts a domain audit entry to a response.
func AuditEntryFromDomain(e *domain.AuditEntry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:             e.ID,
		OperationID:    e.OperationID,
		AccountID:      e.AccountID,
		Delta:          e.Delta,
		BalanceBefore:  e.BalanceBefore,
		BalanceAfter:   e.BalanceAfter,
		AccountVersion: e.AccountVersion,
		CreatedAt:      e.CreatedAt,
	}
}

// AuditEntriesFromDomain converts domain audit entries to responses.
func AuditEntriesFromDomain(entries []*domain.AuditEntry) []*AuditEntryResponse {
	result := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = AuditEntryFromDomain(e)
	}
	return result
}

// ReconciliationResponse represents a per-account reconciliation result.
type ReconciliationResponse struct {
	AccountID       string          `json:"account_id"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Drift           decimal.Decimal `json:"drift"`
	Reconciled      bool            `json:"reconciled"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// ReconciliationFromResult converts a reconciliation result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:       r.AccountID,
		RecordedBalance: r.RecordedBalance,
		ComputedBalance: r.ComputedBalance,
		Drift:           r.Drift,
		Reconciled:      r.Reconciled,
		CheckedAt:       r.CheckedAt,
	}
}

// ReconciliationReportResponse represents a ledger-wide drift report.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromResult converts a report to a response.
func ReconciliationReportFromResult(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d)
	}

	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}
