package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActiveFunc         func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListByOwnerFunc       func(ctx context.Context, ownerID string) ([]*domain.Account, error)
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed adds an account to the backing map.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrUnknownAccount
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Active = active
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockOperationRepository is a mock implementation of OperationRepository.
type MockOperationRepository struct {
	mu         sync.RWMutex
	operations map[string]*domain.Operation
	byKey      map[string]*domain.Operation

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Operation, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, key string) (*domain.Operation, error)
	ListByAccountFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
}

func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{
		operations: make(map[string]*domain.Operation),
		byKey:      make(map[string]*domain.Operation),
	}
}

func (m *MockOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKey[op.IdempotencyKey]; ok {
		return domain.ErrStorageConflict
	}
	m.operations[op.ID] = op
	m.byKey[op.IdempotencyKey] = op
	return nil
}

func (m *MockOperationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if op, ok := m.operations[id]; ok {
		return op, nil
	}
	return nil, domain.ErrOperationNotFound
}

func (m *MockOperationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Operation, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if op, ok := m.byKey[key]; ok {
		return op, nil
	}
	return nil, domain.ErrOperationNotFound
}

func (m *MockOperationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ops []*domain.Operation
	for _, op := range m.operations {
		if (op.SourceAccountID != nil && *op.SourceAccountID == accountID) ||
			(op.DestinationAccountID != nil && *op.DestinationAccountID == accountID) {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry

	AppendFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error
	ListByAccountFunc func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
	SumDeltasFunc     func(ctx context.Context, accountID string) (decimal.Decimal, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditRepository) ListByAccount(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.AuditEntry
	for _, e := range m.entries {
		if e.AccountID == filter.AccountID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockAuditRepository) SumDeltas(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.SumDeltasFunc != nil {
		return m.SumDeltasFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID == accountID {
			sum = sum.Add(e.Delta)
		}
	}
	return sum, nil
}

// Entries returns a copy of all appended entries.
func (m *MockAuditRepository) Entries() []*domain.AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockApprovalRepository is a mock implementation of ApprovalRepository.
type MockApprovalRepository struct {
	mu        sync.RWMutex
	approvals map[string]*domain.Approval

	CreateFunc           func(ctx context.Context, approval *domain.Approval) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Approval, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Approval, error)
	UpdateDecisionFunc   func(ctx context.Context, tx usecase.Transaction, approval *domain.Approval) error
	SetOperationIDFunc   func(ctx context.Context, approvalID, operationID string) error
	ListPendingFunc      func(ctx context.Context, limit, offset int) ([]*domain.Approval, error)
}

func NewMockApprovalRepository() *MockApprovalRepository {
	return &MockApprovalRepository{
		approvals: make(map[string]*domain.Approval),
	}
}

func (m *MockApprovalRepository) Create(ctx context.Context, approval *domain.Approval) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, approval)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[approval.ID] = approval
	return nil
}

func (m *MockApprovalRepository) GetByID(ctx context.Context, id string) (*domain.Approval, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.approvals[id]; ok {
		return a, nil
	}
	return nil, domain.ErrApprovalNotFound
}

func (m *MockApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Approval, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockApprovalRepository) UpdateDecision(ctx context.Context, tx usecase.Transaction, approval *domain.Approval) error {
	if m.UpdateDecisionFunc != nil {
		return m.UpdateDecisionFunc(ctx, tx, approval)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[approval.ID] = approval
	return nil
}

func (m *MockApprovalRepository) SetOperationID(ctx context.Context, approvalID, operationID string) error {
	if m.SetOperationIDFunc != nil {
		return m.SetOperationIDFunc(ctx, approvalID, operationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.approvals[approvalID]; ok {
		a.OperationID = &operationID
	}
	return nil
}

func (m *MockApprovalRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.Approval, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pending []*domain.Approval
	for _, a := range m.approvals {
		if a.State == domain.ApprovalPending {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var unpublished []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(unpublished) < limit {
			unpublished = append(unpublished, e)
		}
	}
	return unpublished, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	return nil
}

// Events returns a copy of all created events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier is a pass-through implementation of Retrier.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockPartyDirectory is a mock implementation of PartyDirectory.
type MockPartyDirectory struct {
	ExistsFunc func(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error)
}

func NewMockPartyDirectory() *MockPartyDirectory {
	return &MockPartyDirectory{}
}

func (m *MockPartyDirectory) Exists(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, kind, ownerID)
	}
	return true, nil
}

// MockCache is an in-memory implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

// MockTransferExecutor is a mock implementation of TransferExecutor.
type MockTransferExecutor struct {
	ExecuteFunc func(ctx context.Context, input usecase.ExecuteInput) (*domain.Operation, error)

	mu    sync.Mutex
	calls []usecase.ExecuteInput
}

func NewMockTransferExecutor() *MockTransferExecutor {
	return &MockTransferExecutor{}
}

func (m *MockTransferExecutor) Execute(ctx context.Context, input usecase.ExecuteInput) (*domain.Operation, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, input)
	}
	return &domain.Operation{
		ID:             "op-" + input.IdempotencyKey,
		Status:         domain.StatusCommitted,
		Amount:         input.Amount,
		Kind:           input.Kind,
		IdempotencyKey: input.IdempotencyKey,
	}, nil
}

// Calls returns a copy of recorded Execute inputs.
func (m *MockTransferExecutor) Calls() []usecase.ExecuteInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]usecase.ExecuteInput, len(m.calls))
	copy(out, m.calls)
	return out
}
