package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/infrastructure/metrics"
)

// ApprovalUseCase gates cash handovers and refunds behind a second-party
// confirmation. Balances move only on the PENDING -> APPROVED transition.
type ApprovalUseCase struct {
	txManager    TransactionManager
	approvalRepo ApprovalRepository
	accountRepo  AccountRepository
	outboxRepo   OutboxRepository
	transfers    TransferExecutor
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewApprovalUseCase creates a new ApprovalUseCase. metrics may be nil.
func NewApprovalUseCase(
	txManager TransactionManager,
	approvalRepo ApprovalRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	transfers TransferExecutor,
	idGen IDGenerator,
	m *metrics.Metrics,
) *ApprovalUseCase {
	return &ApprovalUseCase{
		txManager:    txManager,
		approvalRepo: approvalRepo,
		accountRepo:  accountRepo,
		outboxRepo:   outboxRepo,
		transfers:    transfers,
		idGen:        idGen,
		metrics:      m,
	}
}

// RequestApprovalInput represents a request for a gated transfer.
type RequestApprovalInput struct {
	Kind                 domain.OperationKind
	SourceAccountID      *string
	DestinationAccountID *string
	Amount               decimal.Decimal
	RequestedBy          string
	Note                 string
}

// RequestApproval creates a PENDING workflow. No balance changes until an
// approver decides.
func (uc *ApprovalUseCase) RequestApproval(ctx context.Context, input RequestApprovalInput) (*domain.Approval, error) {
	now := time.Now().UTC()
	approval := &domain.Approval{
		ID:                   uc.idGen.Generate(),
		Kind:                 input.Kind,
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		RequestedBy:          input.RequestedBy,
		Note:                 input.Note,
		State:                domain.ApprovalPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := approval.Validate(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.RequestedBy == "" {
		return nil, domain.ErrInvalidOwnerRef
	}

	// Reject obviously bad requests up front; the funds check itself happens
	// under lock when the approval executes.
	for _, id := range []*string{input.SourceAccountID, input.DestinationAccountID} {
		if id == nil {
			continue
		}

		account, err := uc.accountRepo.GetByID(ctx, *id)
		if err != nil {
			return nil, err
		}

		if !account.Active {
			return nil, domain.ErrUnknownAccount
		}
	}

	if err := uc.approvalRepo.Create(ctx, approval); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalsRequested.Inc()
	}

	return approval, nil
}

// DecideInput represents an approver's decision.
type DecideInput struct {
	ApprovalID string
	DecidedBy  string
	Decision   domain.Decision
	Note       string
}

// Decide settles a pending approval. The decision row is locked so two
// racing approvers cannot both win; a decided workflow rejects any further
// decision instead of overwriting it. Approving triggers exactly one
// transfer execution keyed by the approval id, so a retried approval cannot
// double-apply.
func (uc *ApprovalUseCase) Decide(ctx context.Context, input DecideInput) (*domain.Approval, error) {
	if !input.Decision.Valid() {
		return nil, domain.ErrInvalidDecision
	}

	if input.DecidedBy == "" {
		return nil, domain.ErrUnauthorizedApprover
	}

	approval, err := uc.decide(ctx, input)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalsDecided.WithLabelValues(string(approval.State)).Inc()
	}

	if approval.State != domain.ApprovalApproved {
		return approval, nil
	}

	op, err := uc.transfers.Execute(ctx, ExecuteInput{
		SourceAccountID:      approval.SourceAccountID,
		DestinationAccountID: approval.DestinationAccountID,
		Amount:               approval.Amount,
		Kind:                 approval.Kind,
		IdempotencyKey:       approvalIdempotencyKey(approval.ID),
	})
	if op != nil {
		if linkErr := uc.approvalRepo.SetOperationID(ctx, approval.ID, op.ID); linkErr == nil {
			approval.OperationID = &op.ID
		}
	}

	// The approval stays APPROVED even when the transfer is rejected (e.g.
	// the drawer was emptied while the request sat pending); the rejected
	// operation row records the outcome.
	return approval, err
}

func (uc *ApprovalUseCase) decide(ctx context.Context, input DecideInput) (*domain.Approval, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	approval, err := uc.approvalRepo.GetByIDForUpdate(txCtx, tx, input.ApprovalID)
	if err != nil {
		return nil, err
	}

	if err := approval.CanDecide(input.DecidedBy); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	approval.State = domain.ApprovalRejected
	if input.Decision == domain.DecisionApprove {
		approval.State = domain.ApprovalApproved
	}

	approval.DecidedBy = &input.DecidedBy
	approval.DecidedAt = &now
	approval.UpdatedAt = now
	if input.Note != "" {
		approval.Note = input.Note
	}

	if err := uc.approvalRepo.UpdateDecision(txCtx, tx, approval); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   approval.ID,
		AggregateType: domain.AggregateTypeApproval,
		EventType:     domain.EventTypeApprovalDecided,
		Payload: map[string]any{
			"approval_id": approval.ID,
			"state":       string(approval.State),
			"decided_by":  input.DecidedBy,
			"amount":      approval.Amount.String(),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return approval, nil
}

// GetApproval retrieves an approval by ID.
func (uc *ApprovalUseCase) GetApproval(ctx context.Context, id string) (*domain.Approval, error) {
	return uc.approvalRepo.GetByID(ctx, id)
}

// ListPendingInput represents input for listing pending approvals.
type ListPendingInput struct {
	Limit  int
	Offset int
}

// ListPending lists approvals awaiting a decision.
func (uc *ApprovalUseCase) ListPending(ctx context.Context, input ListPendingInput) ([]*domain.Approval, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.approvalRepo.ListPending(ctx, limit, offset)
}

func approvalIdempotencyKey(approvalID string) string {
	return "approval:" + approvalID
}
