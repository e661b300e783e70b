package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
)

// reconcileScanLimit bounds a full-ledger reconciliation scan.
const reconcileScanLimit = 10000

// LedgerUseCase serves the append-only audit log and the reconciliation
// checks built on it.
type LedgerUseCase struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, auditRepo AuditRepository) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
	}
}

// ListEntriesInput represents input for a ledger query.
type ListEntriesInput struct {
	AccountID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// ListEntries returns an account's audit entries in commit order, optionally
// bounded by a time window.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.AuditEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.auditRepo.ListByAccount(ctx, domain.AuditFilter{
		AccountID: input.AccountID,
		From:      input.From,
		To:        input.To,
		Limit:     limit,
		Offset:    offset,
	})
}

// ReconciliationResult reports whether an account's recorded balance matches
// the sum of its audit deltas.
type ReconciliationResult struct {
	AccountID       string
	RecordedBalance decimal.Decimal
	ComputedBalance decimal.Decimal
	Drift           decimal.Decimal
	Reconciled      bool
	CheckedAt       time.Time
}

// ReconcileAccount replays the audit deltas for one account and compares the
// result with the recorded balance. Accounts open at zero, so the sum of
// deltas is the full balance history.
func (uc *LedgerUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	computed, err := uc.auditRepo.SumDeltas(ctx, accountID)
	if err != nil {
		return nil, err
	}

	drift := account.Balance.Sub(computed)

	return &ReconciliationResult{
		AccountID:       accountID,
		RecordedBalance: account.Balance,
		ComputedBalance: computed,
		Drift:           drift,
		Reconciled:      drift.IsZero(),
		CheckedAt:       time.Now().UTC(),
	}, nil
}

// ReconciliationReport covers every account in the ledger.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileAll checks every account and collects discrepancies.
func (uc *LedgerUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	accounts, err := uc.accountRepo.List(ctx, reconcileScanLimit, 0)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(accounts),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, account := range accounts {
		result, err := uc.ReconcileAccount(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("reconcile account %s: %w", account.ID, err)
		}

		if result.Reconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
