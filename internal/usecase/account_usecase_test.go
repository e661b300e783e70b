package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillbooks/ledger/internal/domain"
	"github.com/tillbooks/ledger/internal/usecase"
	"github.com/tillbooks/ledger/internal/usecase/mocks"
)

type accountFixture struct {
	txManager   *mocks.MockTransactionManager
	accountRepo *mocks.MockAccountRepository
	outboxRepo  *mocks.MockOutboxRepository
	directory   *mocks.MockPartyDirectory
	cache       *mocks.MockCache
	idGen       *mocks.MockIDGenerator
	uc          *usecase.AccountUseCase
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		txManager:   mocks.NewMockTransactionManager(),
		accountRepo: mocks.NewMockAccountRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		directory:   mocks.NewMockPartyDirectory(),
		cache:       mocks.NewMockCache(),
		idGen:       mocks.NewMockIDGenerator(),
	}

	f.uc = usecase.NewAccountUseCase(
		f.txManager,
		f.accountRepo,
		f.outboxRepo,
		f.directory,
		f.cache,
		f.idGen,
	)

	return f
}

func TestAccountUseCase_OpenBranchAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the cash and petty cash pair", func(t *testing.T) {
		f := newAccountFixture()

		accounts, err := f.uc.OpenBranchAccounts(ctx, "branch-1")
		require.NoError(t, err)
		require.Len(t, accounts, 2)

		assert.Equal(t, domain.OwnerBranchCash, accounts[0].OwnerType)
		assert.Equal(t, domain.OwnerBranchPettyCash, accounts[1].OwnerType)

		for _, acc := range accounts {
			assert.Equal(t, "branch-1", acc.OwnerID)
			assert.True(t, acc.Balance.IsZero())
			assert.True(t, acc.Active)
		}

		events := f.outboxRepo.Events()
		require.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, domain.EventTypeAccountOpened, e.EventType)
		}
	})

	t.Run("unknown branch", func(t *testing.T) {
		f := newAccountFixture()
		f.directory.ExistsFunc = func(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error) {
			return false, nil
		}

		_, err := f.uc.OpenBranchAccounts(ctx, "branch-x")
		assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
	})

	t.Run("empty owner ref", func(t *testing.T) {
		f := newAccountFixture()

		_, err := f.uc.OpenBranchAccounts(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidOwnerRef)
	})

	t.Run("overlong owner ref", func(t *testing.T) {
		f := newAccountFixture()

		_, err := f.uc.OpenBranchAccounts(ctx, strings.Repeat("x", 65))
		assert.ErrorIs(t, err, domain.ErrInvalidOwnerRef)
	})

	t.Run("rolls back the pair when the second create fails", func(t *testing.T) {
		f := newAccountFixture()

		calls := 0
		f.accountRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
			calls++
			if calls == 2 {
				return assert.AnError
			}
			return nil
		}

		committed := false
		f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
			return &mocks.MockTransaction{
				CommitFunc: func(ctx context.Context) error {
					committed = true
					return nil
				},
			}, nil
		}

		_, err := f.uc.OpenBranchAccounts(ctx, "branch-1")
		assert.Error(t, err)
		assert.False(t, committed)
	})
}

func TestAccountUseCase_OpenCompanyBank(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	var gotKind domain.PartyKind
	f.directory.ExistsFunc = func(ctx context.Context, kind domain.PartyKind, ownerID string) (bool, error) {
		gotKind = kind
		return true, nil
	}

	account, err := f.uc.OpenCompanyBank(ctx, "co-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerCompanyBank, account.OwnerType)
	assert.Equal(t, domain.PartyCompany, gotKind)
}

func TestAccountUseCase_OpenCustomerCredit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the credit limit", func(t *testing.T) {
		f := newAccountFixture()

		account, err := f.uc.OpenCustomerCredit(ctx, "cust-1", decimal.RequireFromString("500.00"))
		require.NoError(t, err)
		assert.Equal(t, domain.OwnerCustomerCredit, account.OwnerType)
		assert.True(t, account.CreditLimit.Equal(decimal.RequireFromString("500.00")))
		assert.True(t, account.Balance.IsZero())
	})

	t.Run("negative limit", func(t *testing.T) {
		f := newAccountFixture()

		_, err := f.uc.OpenCustomerCredit(ctx, "cust-1", decimal.RequireFromString("-1"))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestAccountUseCase_GetAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("caches on miss and serves from cache after", func(t *testing.T) {
		f := newAccountFixture()
		f.accountRepo.Seed(&domain.Account{
			ID:        "acc-1",
			OwnerType: domain.OwnerBranchCash,
			OwnerID:   "branch-1",
			Balance:   decimal.RequireFromString("12.34"),
			Active:    true,
		})

		got, err := f.uc.GetAccount(ctx, "acc-1")
		require.NoError(t, err)
		assert.Equal(t, "acc-1", got.ID)

		repoCalls := 0
		f.accountRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Account, error) {
			repoCalls++
			return nil, domain.ErrUnknownAccount
		}

		got, err = f.uc.GetAccount(ctx, "acc-1")
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("12.34")))
		assert.Zero(t, repoCalls)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newAccountFixture()

		_, err := f.uc.GetAccount(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrUnknownAccount)
	})
}

func TestAccountUseCase_Deactivate(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()
	f.accountRepo.Seed(&domain.Account{
		ID:        "acc-1",
		OwnerType: domain.OwnerBranchCash,
		OwnerID:   "branch-1",
		Active:    true,
	})
	require.NoError(t, f.cache.Set(ctx, "account:acc-1", "{}", time.Minute))

	account, err := f.uc.Deactivate(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, account.Active)

	stored, _ := f.accountRepo.GetByID(ctx, "acc-1")
	assert.False(t, stored.Active)

	_, err = f.cache.Get(ctx, "account:acc-1")
	assert.Error(t, err, "cache entry should be gone")

	_, err = f.uc.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}
