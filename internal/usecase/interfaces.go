package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
)

// AccountRepository defines data access for ledger accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// OperationRepository defines data access for transfer operations.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.Operation) error
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Operation, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
}

// AuditRepository defines data access for the append-only ledger log.
type AuditRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.AuditEntry) error
	ListByAccount(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
	SumDeltas(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// ApprovalRepository defines data access for approval workflows.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *domain.Approval) error
	GetByID(ctx context.Context, id string) (*domain.Approval, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Approval, error)
	UpdateDecision(ctx context.Context, tx Transaction, approval *domain.Approval) error
	SetOperationID(ctx context.Context, approvalID, operationID string) error
	ListPending(ctx context.Context, limit, offset int) ([]*domain.Approval, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts
// (serialization failures, deadlocks).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for hot reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore caches full HTTP responses keyed by idempotency key.
// The durable idempotency record is the unique key on the operations table;
// this store only short-circuits transport-level replays.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// PartyDirectory confirms that an account owner (company, branch, customer)
// exists and is active. Party records live outside this service.
type PartyDirectory interface {
	Exists(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error)
}
