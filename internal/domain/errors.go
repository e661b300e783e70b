package domain

import "errors"

var (
	// Account errors
	ErrUnknownAccount    = errors.New("account missing or inactive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOwnerNotFound     = errors.New("account owner not found")

	// Operation errors
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrSameAccount           = errors.New("source and destination must differ")
	ErrNoAccounts            = errors.New("operation must reference at least one account")
	ErrInvalidKind           = errors.New("unknown operation kind")
	ErrMissingIdempotencyKey = errors.New("idempotency key required")
	ErrKeyReused             = errors.New("idempotency key reused with different parameters")
	ErrOperationNotFound     = errors.New("operation not found")

	// Approval errors
	ErrInvalidDecision      = errors.New("decision must be APPROVE or REJECT")
	ErrAlreadyDecided       = errors.New("approval already decided")
	ErrUnauthorizedApprover = errors.New("requester cannot approve own request")
	ErrApprovalNotFound     = errors.New("approval not found")

	// Storage errors
	ErrStorageConflict = errors.New("storage conflict, retry with same idempotency key")
)
