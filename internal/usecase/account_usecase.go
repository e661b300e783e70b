package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbooks/ledger/internal/domain"
)

// AccountUseCase handles ledger account lifecycle. Account creation is an
// explicit orchestration step invoked by the owning workflow (branch
// creation, customer onboarding), not a storage-layer side effect.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	directory   PartyDirectory
	cache       Cache
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	directory PartyDirectory,
	cache Cache,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		directory:   directory,
		cache:       cache,
		idGen:       idGen,
	}
}

// OpenBranchAccounts creates the cash drawer and petty cash accounts for a
// branch in one transaction.
func (uc *AccountUseCase) OpenBranchAccounts(ctx context.Context, branchID string) ([]*domain.Account, error) {
	if err := domain.ValidateOwnerRef(branchID); err != nil {
		return nil, err
	}

	if err := uc.checkOwner(ctx, domain.PartyBranch, branchID); err != nil {
		return nil, err
	}

	return uc.openAccounts(ctx, []*domain.Account{
		uc.newAccount(domain.OwnerBranchCash, branchID, decimal.Zero),
		uc.newAccount(domain.OwnerBranchPettyCash, branchID, decimal.Zero),
	})
}

// OpenCompanyBank creates a company bank account.
func (uc *AccountUseCase) OpenCompanyBank(ctx context.Context, companyID string) (*domain.Account, error) {
	if err := domain.ValidateOwnerRef(companyID); err != nil {
		return nil, err
	}

	if err := uc.checkOwner(ctx, domain.PartyCompany, companyID); err != nil {
		return nil, err
	}

	accounts, err := uc.openAccounts(ctx, []*domain.Account{
		uc.newAccount(domain.OwnerCompanyBank, companyID, decimal.Zero),
	})
	if err != nil {
		return nil, err
	}

	return accounts[0], nil
}

// OpenCustomerCredit creates a customer credit line with the given limit.
// Credit accounts may go negative down to -creditLimit.
func (uc *AccountUseCase) OpenCustomerCredit(ctx context.Context, customerID string, creditLimit decimal.Decimal) (*domain.Account, error) {
	if err := domain.ValidateOwnerRef(customerID); err != nil {
		return nil, err
	}

	if creditLimit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if err := uc.checkOwner(ctx, domain.PartyCustomer, customerID); err != nil {
		return nil, err
	}

	accounts, err := uc.openAccounts(ctx, []*domain.Account{
		uc.newAccount(domain.OwnerCustomerCredit, customerID, creditLimit),
	})
	if err != nil {
		return nil, err
	}

	return accounts[0], nil
}

// GetAccount retrieves an account, served from cache when fresh.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, accountCacheKey(id)); err == nil {
			var account domain.Account
			if json.Unmarshal([]byte(cached), &account) == nil {
				return &account, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(account); err == nil {
			_ = uc.cache.Set(ctx, accountCacheKey(id), string(data), AccountCacheTTL)
		}
	}

	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, limit, offset)
}

// ListByOwner lists all accounts belonging to one owner.
func (uc *AccountUseCase) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByOwner(ctx, ownerID)
}

// Deactivate marks an account inactive. Accounts with referencing
// operations are never hard-deleted; an inactive account fails transfer
// validation.
func (uc *AccountUseCase) Deactivate(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.SetActive(ctx, id, false, now); err != nil {
		return nil, err
	}

	account.Active = false
	account.UpdatedAt = now

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, accountCacheKey(id))
	}

	return account, nil
}

func (uc *AccountUseCase) checkOwner(ctx context.Context, kind domain.PartyKind, ownerID string) error {
	exists, err := uc.directory.Exists(ctx, kind, ownerID)
	if err != nil {
		return err
	}

	if !exists {
		return domain.ErrOwnerNotFound
	}

	return nil
}

func (uc *AccountUseCase) newAccount(ownerType domain.OwnerType, ownerID string, creditLimit decimal.Decimal) *domain.Account {
	now := time.Now().UTC()

	return &domain.Account{
		ID:          uc.idGen.Generate(),
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		Balance:     decimal.Zero,
		CreditLimit: creditLimit,
		Version:     0,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (uc *AccountUseCase) openAccounts(ctx context.Context, accounts []*domain.Account) ([]*domain.Account, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	for _, account := range accounts {
		if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
			return nil, err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountOpened,
			Payload: map[string]any{
				"account_id": account.ID,
				"owner_type": string(account.OwnerType),
				"owner_id":   account.OwnerID,
			},
			CreatedAt: account.CreatedAt,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return accounts, nil
}
