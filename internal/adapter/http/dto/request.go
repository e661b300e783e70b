package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// OpenBranchAccountsRequest opens the cash drawer / petty cash pair for a
// branch.
type OpenBranchAccountsRequest struct {
	BranchID string `json:"branch_id"`
}

// OpenCompanyBankRequest opens a company bank account.
type OpenCompanyBankRequest struct {
	CompanyID string `json:"company_id"`
}

// OpenCustomerCreditRequest opens a customer credit line.
type OpenCustomerCreditRequest struct {
	CustomerID  string          `json:"customer_id"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// CreateTransferRequest represents a request to execute a transfer. A nil
// source is an external inflow; a nil destination is an external outflow.
type CreateTransferRequest struct {
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 string          `json:"kind"`
}

// ToUseCaseInput converts to use case input. The idempotency key arrives in
// the request header, not the body.
func (r *CreateTransferRequest) ToUseCaseInput(idempotencyKey string) usecase.ExecuteInput {
	return usecase.ExecuteInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Kind:                 domain.OperationKind(r.Kind),
		IdempotencyKey:       idempotencyKey,
	}
}

// RequestApprovalRequest represents a request for a gated transfer.
type RequestApprovalRequest struct {
	Kind                 string          `json:"kind"`
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	RequestedBy          string          `json:"requested_by"`
	Note                 string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RequestApprovalRequest) ToUseCaseInput() usecase.RequestApprovalInput {
	return usecase.RequestApprovalInput{
		Kind:                 domain.OperationKind(r.Kind),
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		RequestedBy:          r.RequestedBy,
		Note:                 r.Note,
	}
}

// DecideApprovalRequest represents an approver's decision.
type DecideApprovalRequest struct {
	DecidedBy string `json:"decided_by"`
	Decision  string `json:"decision"`
	Note      string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DecideApprovalRequest) ToUseCaseInput(approvalID string) usecase.DecideInput {
	return usecase.DecideInput{
		ApprovalID: approvalID,
		DecidedBy:  r.DecidedBy,
		Decision:   domain.Decision(r.Decision),
		Note:       r.Note,
	}
}
