package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/adapter/repository/postgres"
	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

func TestOutbox(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newTestStack(t)
	outboxRepo := postgres.NewOutboxRepository(stack.DB.Pool)

	t.Run("committed transfer leaves an event", func(t *testing.T) {
		stack.DB.TruncateAll(ctx)

		source := stack.DB.CreateTestAccountWithBalance(ctx, domain.OwnerBranchCash, "branch-1", decimal.NewFromInt(100))
		dest := stack.DB.CreateTestAccount(ctx, domain.OwnerCompanyBank, "company-1")

		op, err := stack.TransferUC.Execute(ctx, usecase.ExecuteInput{
			SourceAccountID:      strPtr(source.ID),
			DestinationAccountID: strPtr(dest.ID),
			Amount:               decimal.NewFromInt(30),
			Kind:                 domain.KindFundTransfer,
			IdempotencyKey:       "outbox-1",
		})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		events, err := outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to fetch events: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 unpublished event, got %d", len(events))
		}

		event := events[0]
		if event.EventType != domain.EventTypeOperationCommitted {
			t.Fatalf("expected %s, got %s", domain.EventTypeOperationCommitted, event.EventType)
		}
		if event.AggregateID != op.ID {
			t.Fatalf("expected aggregate %s, got %s", op.ID, event.AggregateID)
		}
	})

	t.Run("marking removes from unpublished set", func(t *testing.T) {
		stack.DB.TruncateAll(ctx)

		source := stack.DB.CreateTestAccountWithBalance(ctx, domain.OwnerBranchCash, "branch-1", decimal.NewFromInt(100))
		dest := stack.DB.CreateTestAccount(ctx, domain.OwnerCompanyBank, "company-1")

		if _, err := stack.TransferUC.Execute(ctx, usecase.ExecuteInput{
			SourceAccountID:      strPtr(source.ID),
			DestinationAccountID: strPtr(dest.ID),
			Amount:               decimal.NewFromInt(30),
			Kind:                 domain.KindFundTransfer,
			IdempotencyKey:       "outbox-2",
		}); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		events, err := outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to fetch events: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		if err := outboxRepo.MarkPublished(ctx, events[0].ID, time.Now().UTC()); err != nil {
			t.Fatalf("failed to mark published: %v", err)
		}

		remaining, err := outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to fetch events: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("expected no unpublished events, got %d", len(remaining))
		}
	})

	t.Run("rejected transfer records rejection event", func(t *testing.T) {
		stack.DB.TruncateAll(ctx)

		source := stack.DB.CreateTestAccountWithBalance(ctx, domain.OwnerBranchCash, "branch-1", decimal.NewFromInt(10))
		dest := stack.DB.CreateTestAccount(ctx, domain.OwnerCompanyBank, "company-1")

		if _, err := stack.TransferUC.Execute(ctx, usecase.ExecuteInput{
			SourceAccountID:      strPtr(source.ID),
			DestinationAccountID: strPtr(dest.ID),
			Amount:               decimal.NewFromInt(50),
			Kind:                 domain.KindFundTransfer,
			IdempotencyKey:       "outbox-3",
		}); err == nil {
			t.Fatal("expected insufficient funds")
		}

		events, err := outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to fetch events: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].EventType != domain.EventTypeOperationRejected {
			t.Fatalf("expected %s, got %s", domain.EventTypeOperationRejected, events[0].EventType)
		}
	})
}
