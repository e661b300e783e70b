package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrInvalidOwnerRef = errors.New("invalid owner reference")
)

// Validation constants
const (
	MaxOwnerIDLength     = 64
	MaxOperationAmount   = "1000000000" // 1 billion
	MaxDecisionNoteBytes = 1024
)

// ValidateAmount validates a transfer amount against the global bounds.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxOperationAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxOperationAmount)
	}

	return nil
}

// ValidateOwnerRef validates an account owner reference (branch, company or
// customer id).
func ValidateOwnerRef(ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)

	if ownerID == "" {
		return fmt.Errorf("%w: owner id cannot be empty", ErrInvalidOwnerRef)
	}

	if len(ownerID) > MaxOwnerIDLength {
		return fmt.Errorf("%w: owner id exceeds %d characters", ErrInvalidOwnerRef, MaxOwnerIDLength)
	}

	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
