package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/infrastructure/metrics"
)

// TransferExecutor executes transfer operations. Implemented by
// TransferUseCase; the approval workflow depends on this interface.
type TransferExecutor interface {
	Execute(ctx context.Context, input ExecuteInput) (*domain.Operation, error)
}

// TransferUseCase orchestrates a debit+credit pair (or single-sided external
// flow) as one all-or-nothing unit, producing matching audit entries.
type TransferUseCase struct {
	txManager     TransactionManager
	retrier       Retrier
	accountRepo   AccountRepository
	operationRepo OperationRepository
	auditRepo     AuditRepository
	outboxRepo    OutboxRepository
	cache         Cache
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase. cache and metrics may be
// nil.
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	operationRepo OperationRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:     txManager,
		retrier:       retrier,
		accountRepo:   accountRepo,
		operationRepo: operationRepo,
		auditRepo:     auditRepo,
		outboxRepo:    outboxRepo,
		cache:         cache,
		idGen:         idGen,
		metrics:       m,
	}
}

// ExecuteInput represents a transfer intent. A nil source is an external
// inflow (sale settlement); a nil destination is an external outflow
// (expense).
type ExecuteInput struct {
	SourceAccountID      *string
	DestinationAccountID *string
	Amount               decimal.Decimal
	Kind                 domain.OperationKind
	IdempotencyKey       string
}

// Execute runs one transfer operation. A key that already reached COMMITTED
// or REJECTED returns the stored operation unchanged; otherwise all touched
// accounts are locked in ascending-id order, funds are re-checked under the
// lock, and balances, audit entries and the operation row commit in a single
// database transaction. Serialization conflicts are retried with bounded
// backoff under the same key.
func (uc *TransferUseCase) Execute(ctx context.Context, input ExecuteInput) (*domain.Operation, error) {
	probe := &domain.Operation{
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Kind:                 input.Kind,
		IdempotencyKey:       input.IdempotencyKey,
	}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	start := time.Now()

	var op *domain.Operation

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		op, err = uc.executeOnce(ctx, input)

		return err
	})

	uc.observe(op, err, time.Since(start))

	return op, err
}

func (uc *TransferUseCase) executeOnce(ctx context.Context, input ExecuteInput) (*domain.Operation, error) {
	// Replay before taking any lock: a key that already reached a terminal
	// status returns the stored result unchanged.
	existing, err := uc.operationRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return uc.replay(existing, input)
	}

	if !errors.Is(err, domain.ErrOperationNotFound) {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock all touched accounts in ascending-id order so two concurrent
	// operations that reference the same pair in opposite directions cannot
	// deadlock.
	ids := collectAccountIDs(input)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrUnknownAccount
	}

	for _, a := range accounts {
		if !a.Active {
			return nil, domain.ErrUnknownAccount
		}
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	var source, destination *domain.Account
	if input.SourceAccountID != nil {
		source = accountMap[*input.SourceAccountID]
	}

	if input.DestinationAccountID != nil {
		destination = accountMap[*input.DestinationAccountID]
	}

	now := time.Now().UTC()
	op := &domain.Operation{
		ID:                   uc.idGen.Generate(),
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Kind:                 input.Kind,
		IdempotencyKey:       input.IdempotencyKey,
		CreatedAt:            now,
	}

	// Funds are re-checked under the lock; any pre-check value may be stale.
	if source != nil {
		if err := source.ValidateDebit(input.Amount); err != nil {
			return uc.reject(txCtx, tx, op, domain.ReasonInsufficientFunds, now)
		}
	}

	op.Status = domain.StatusCommitted

	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	if source != nil {
		if err := uc.applyLeg(txCtx, tx, op, source, input.Amount.Neg(), now); err != nil {
			return nil, err
		}
	}

	if destination != nil {
		if err := uc.applyLeg(txCtx, tx, op, destination, input.Amount, now); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   op.ID,
		AggregateType: domain.AggregateTypeOperation,
		EventType:     domain.EventTypeOperationCommitted,
		Payload:       operationPayload(op),
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateAccounts(ctx, ids)

	return op, nil
}

// reject persists a REJECTED operation row so the caller gets a stable
// operation id and reason code. No balance is touched and no audit entry is
// written.
func (uc *TransferUseCase) reject(ctx context.Context, tx Transaction, op *domain.Operation, reason string, now time.Time) (*domain.Operation, error) {
	op.Status = domain.StatusRejected
	op.FailureReason = reason

	if err := uc.operationRepo.Create(ctx, tx, op); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   op.ID,
		AggregateType: domain.AggregateTypeOperation,
		EventType:     domain.EventTypeOperationRejected,
		Payload:       operationPayload(op),
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return op, op.RejectionError()
}

// applyLeg writes one audit entry and the new balance for a single account.
// delta is negative for debits.
func (uc *TransferUseCase) applyLeg(ctx context.Context, tx Transaction, op *domain.Operation, account *domain.Account, delta decimal.Decimal, now time.Time) error {
	newBalance := account.Balance.Add(delta)

	entry := &domain.AuditEntry{
		ID:             uc.idGen.Generate(),
		OperationID:    op.ID,
		AccountID:      account.ID,
		Delta:          delta,
		BalanceBefore:  account.Balance,
		BalanceAfter:   newBalance,
		AccountVersion: account.Version + 1,
		CreatedAt:      now,
	}

	if err := uc.auditRepo.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	account.Balance = newBalance
	account.Version++

	return nil
}

// replay returns the stored terminal result for a reused idempotency key.
// The same key with different parameters is a client bug, not a retry.
func (uc *TransferUseCase) replay(existing *domain.Operation, input ExecuteInput) (*domain.Operation, error) {
	intent := &domain.Operation{
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		Kind:                 input.Kind,
	}

	if !existing.SameParameters(intent) {
		return nil, domain.ErrKeyReused
	}

	return existing, existing.RejectionError()
}

// GetOperation retrieves an operation by ID.
func (uc *TransferUseCase) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	return uc.operationRepo.GetByID(ctx, id)
}

// ListOperationsByAccountInput represents input for listing operations.
type ListOperationsByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListOperationsByAccount lists operations touching an account.
func (uc *TransferUseCase) ListOperationsByAccount(ctx context.Context, input ListOperationsByAccountInput) ([]*domain.Operation, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.operationRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

func (uc *TransferUseCase) invalidateAccounts(ctx context.Context, ids []string) {
	if uc.cache == nil {
		return
	}

	for _, id := range ids {
		_ = uc.cache.Delete(ctx, accountCacheKey(id))
	}
}

func (uc *TransferUseCase) observe(op *domain.Operation, err error, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.OperationDuration.Observe(elapsed.Seconds())

	switch {
	case err == nil && op != nil:
		uc.metrics.OperationsCommitted.Inc()
		amount, _ := op.Amount.Float64()
		uc.metrics.OperationAmount.Observe(amount)
	case errors.Is(err, domain.ErrInsufficientFunds):
		uc.metrics.OperationsRejected.WithLabelValues(domain.ReasonInsufficientFunds).Inc()
	default:
		uc.metrics.OperationErrors.WithLabelValues(errorLabel(err)).Inc()
	}
}

func collectAccountIDs(input ExecuteInput) []string {
	ids := make([]string, 0, 2)

	if input.SourceAccountID != nil {
		ids = append(ids, *input.SourceAccountID)
	}

	if input.DestinationAccountID != nil && (input.SourceAccountID == nil || *input.DestinationAccountID != *input.SourceAccountID) {
		ids = append(ids, *input.DestinationAccountID)
	}

	sort.Strings(ids)

	return ids
}

func operationPayload(op *domain.Operation) map[string]any {
	payload := map[string]any{
		"operation_id": op.ID,
		"amount":       op.Amount.String(),
		"kind":         string(op.Kind),
		"status":       string(op.Status),
	}

	if op.SourceAccountID != nil {
		payload["source_account_id"] = *op.SourceAccountID
	}

	if op.DestinationAccountID != nil {
		payload["destination_account_id"] = *op.DestinationAccountID
	}

	if op.FailureReason != "" {
		payload["reason"] = op.FailureReason
	}

	return payload
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, domain.ErrKeyReused):
		return "key_reused"
	case errors.Is(err, domain.ErrStorageConflict):
		return "storage_conflict"
	default:
		return "storage_failure"
	}
}

func accountCacheKey(id string) string {
	return "account:" + id
}
