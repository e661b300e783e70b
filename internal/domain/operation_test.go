package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestOperation_Validate(t *testing.T) {
	tests := []struct {
		name        string
		op          domain.Operation
		expectError error
	}{
		{
			name: "valid two-sided transfer",
			op: domain.Operation{
				SourceAccountID:      strPtr("acc-1"),
				DestinationAccountID: strPtr("acc-2"),
				Amount:               decimal.NewFromInt(100),
				Kind:                 domain.KindFundTransfer,
				IdempotencyKey:       "k1",
			},
		},
		{
			name: "valid external inflow",
			op: domain.Operation{
				DestinationAccountID: strPtr("acc-2"),
				Amount:               decimal.NewFromInt(100),
				Kind:                 domain.KindSaleSettlement,
				IdempotencyKey:       "k1",
			},
		},
		{
			name: "valid external outflow",
			op: domain.Operation{
				SourceAccountID: strPtr("acc-1"),
				Amount:          decimal.NewFromInt(100),
				Kind:            domain.KindExpense,
				IdempotencyKey:  "k1",
			},
		},
		{
			name: "zero amount",
			op: domain.Operation{
				SourceAccountID:      strPtr("acc-1"),
				DestinationAccountID: strPtr("acc-2"),
				Amount:               decimal.Zero,
				Kind:                 domain.KindFundTransfer,
				IdempotencyKey:       "k1",
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			op: domain.Operation{
				SourceAccountID:      strPtr("acc-1"),
				DestinationAccountID: strPtr("acc-2"),
				Amount:               decimal.NewFromInt(-5),
				Kind:                 domain.KindFundTransfer,
				IdempotencyKey:       "k1",
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "both sides nil",
			op: domain.Operation{
				Amount:         decimal.NewFromInt(100),
				Kind:           domain.KindFundTransfer,
				IdempotencyKey: "k1",
			},
			expectError: domain.ErrNoAccounts,
		},
		{
			name: "same account both sides",
			op: domain.Operation{
				SourceAccountID:      strPtr("acc-1"),
				DestinationAccountID: strPtr("acc-1"),
				Amount:               decimal.NewFromInt(100),
				Kind:                 domain.KindFundTransfer,
				IdempotencyKey:       "k1",
			},
			expectError: domain.ErrSameAccount,
		},
		{
			name: "unknown kind",
			op: domain.Operation{
				SourceAccountID:      strPtr("acc-1"),
				DestinationAccountID: strPtr("acc-2"),
				Amount:               decimal.NewFromInt(100),
				Kind:                 domain.OperationKind("WIRE"),
				IdempotencyKey:       "k1",
			},
			expectError: domain.ErrInvalidKind,
		},
		{
			name: "missing idempotency key",
			op: domain.Operation{
				SourceAccountID:      strPtr("acc-1"),
				DestinationAccountID: strPtr("acc-2"),
				Amount:               decimal.NewFromInt(100),
				Kind:                 domain.KindFundTransfer,
			},
			expectError: domain.ErrMissingIdempotencyKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if err != tt.expectError {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestOperation_SameParameters(t *testing.T) {
	base := domain.Operation{
		SourceAccountID:      strPtr("acc-1"),
		DestinationAccountID: strPtr("acc-2"),
		Amount:               decimal.NewFromInt(100),
		Kind:                 domain.KindFundTransfer,
	}

	same := domain.Operation{
		SourceAccountID:      strPtr("acc-1"),
		DestinationAccountID: strPtr("acc-2"),
		Amount:               decimal.RequireFromString("100"),
		Kind:                 domain.KindFundTransfer,
	}
	if !base.SameParameters(&same) {
		t.Error("expected identical parameters to match")
	}

	diffAmount := same
	diffAmount.Amount = decimal.NewFromInt(101)
	if base.SameParameters(&diffAmount) {
		t.Error("expected different amount to mismatch")
	}

	diffSource := same
	diffSource.SourceAccountID = nil
	if base.SameParameters(&diffSource) {
		t.Error("expected nil source to mismatch")
	}
}

func TestOperation_RejectionError(t *testing.T) {
	op := domain.Operation{
		Status:        domain.StatusRejected,
		FailureReason: domain.ReasonInsufficientFunds,
	}
	if op.RejectionError() != domain.ErrInsufficientFunds {
		t.Errorf("expected ErrInsufficientFunds, got %v", op.RejectionError())
	}

	committed := domain.Operation{Status: domain.StatusCommitted}
	if committed.RejectionError() != nil {
		t.Error("expected nil for committed operation")
	}
}

func TestOperationKind_RequiresApproval(t *testing.T) {
	tests := []struct {
		kind     domain.OperationKind
		requires bool
	}{
		{domain.KindFundTransfer, false},
		{domain.KindSaleSettlement, false},
		{domain.KindExpense, false},
		{domain.KindCashHandover, true},
		{domain.KindRefund, true},
	}

	for _, tt := range tests {
		if tt.kind.RequiresApproval() != tt.requires {
			t.Errorf("%s: expected RequiresApproval=%v", tt.kind, tt.requires)
		}
	}
}
