package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    decimal.Decimal
		expectErr error
	}{
		{"valid amount", decimal.RequireFromString("10.50"), nil},
		{"smallest positive", decimal.RequireFromString("0.01"), nil},
		{"zero", decimal.Zero, domain.ErrInvalidAmount},
		{"negative", decimal.NewFromInt(-1), domain.ErrInvalidAmount},
		{"over maximum", decimal.RequireFromString("1000000001"), domain.ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateAmount(tt.amount)
			if tt.expectErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestValidateOwnerRef(t *testing.T) {
	if err := domain.ValidateOwnerRef("branch-42"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := domain.ValidateOwnerRef("  "); !errors.Is(err, domain.ErrInvalidOwnerRef) {
		t.Errorf("expected ErrInvalidOwnerRef for blank owner, got %v", err)
	}

	long := strings.Repeat("x", domain.MaxOwnerIDLength+1)
	if err := domain.ValidateOwnerRef(long); !errors.Is(err, domain.ErrInvalidOwnerRef) {
		t.Errorf("expected ErrInvalidOwnerRef for long owner, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults applied", 0, 0, 50, 0},
		{"negative offset clamped", 10, -5, 10, 0},
		{"limit capped", 5000, 20, 1000, 20},
		{"passthrough", 25, 100, 25, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := domain.ValidatePagination(tt.limit, tt.offset)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
