package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

func TestReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newTestStack(t)

	t.Run("balances reconcile after transfers", func(t *testing.T) {
		stack.DB.TruncateAll(ctx)

		source := stack.DB.CreateTestAccountWithBalance(ctx, domain.OwnerBranchCash, "branch-1", decimal.NewFromInt(1000))
		dest := stack.DB.CreateTestAccount(ctx, domain.OwnerCompanyBank, "company-1")

		for i := range 5 {
			if _, err := stack.TransferUC.Execute(ctx, usecase.ExecuteInput{
				SourceAccountID:      strPtr(source.ID),
				DestinationAccountID: strPtr(dest.ID),
				Amount:               decimal.NewFromInt(int64(10 * (i + 1))),
				Kind:                 domain.KindFundTransfer,
				IdempotencyKey:       fmt.Sprintf("recon-%d", i),
			}); err != nil {
				t.Fatalf("transfer %d failed: %v", i, err)
			}
		}

		result, err := stack.LedgerUC.ReconcileAccount(ctx, source.ID)
		if err != nil {
			t.Fatalf("failed to reconcile source: %v", err)
		}
		if !result.Reconciled {
			t.Fatalf("expected source reconciled, discrepancy %s", result.Drift)
		}

		report, err := stack.LedgerUC.ReconcileAll(ctx)
		if err != nil {
			t.Fatalf("failed to reconcile all: %v", err)
		}
		if len(report.Discrepancies) != 0 {
			t.Fatalf("expected no discrepancies, got %+v", report.Discrepancies)
		}
		if report.TotalAccounts != 2 {
			t.Fatalf("expected 2 accounts checked, got %d", report.TotalAccounts)
		}
	})

	t.Run("seeded balance without audit trail is flagged", func(t *testing.T) {
		stack.DB.TruncateAll(ctx)

		// Balance injected outside the transfer path leaves no audit entries.
		drifted := stack.DB.CreateTestAccountWithBalance(ctx, domain.OwnerBranchCash, "branch-1", decimal.NewFromInt(100))

		result, err := stack.LedgerUC.ReconcileAccount(ctx, drifted.ID)
		if err != nil {
			t.Fatalf("failed to reconcile: %v", err)
		}
		if result.Reconciled {
			t.Fatal("expected discrepancy")
		}
		if !result.Drift.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("expected discrepancy 100, got %s", result.Drift)
		}
	})

	t.Run("ledger entries trace every balance step", func(t *testing.T) {
		stack.DB.TruncateAll(ctx)

		source := stack.DB.CreateTestAccountWithBalance(ctx, domain.OwnerBranchCash, "branch-1", decimal.NewFromInt(100))
		dest := stack.DB.CreateTestAccount(ctx, domain.OwnerCompanyBank, "company-1")

		for i := range 3 {
			if _, err := stack.TransferUC.Execute(ctx, usecase.ExecuteInput{
				SourceAccountID:      strPtr(source.ID),
				DestinationAccountID: strPtr(dest.ID),
				Amount:               decimal.NewFromInt(10),
				Kind:                 domain.KindFundTransfer,
				IdempotencyKey:       fmt.Sprintf("trace-%d", i),
			}); err != nil {
				t.Fatalf("transfer %d failed: %v", i, err)
			}
		}

		entries, err := stack.LedgerUC.ListEntries(ctx, usecase.ListEntriesInput{
			AccountID: source.ID,
			Limit:     100,
		})
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		// Entries chain: each starts where the previous ended.
		for i, entry := range entries {
			if entry.AccountVersion != int64(i+1) {
				t.Fatalf("expected version %d, got %d", i+1, entry.AccountVersion)
			}
			if i > 0 && !entry.BalanceBefore.Equal(entries[i-1].BalanceAfter) {
				t.Fatalf("entry %d does not chain: before %s, previous after %s",
					i, entry.BalanceBefore, entries[i-1].BalanceAfter)
			}
		}
	})
}
