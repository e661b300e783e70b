package integration

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	adaptershttp "github.com/tillbooks/ledger/internal/adapter/http"
	"github.com/tillbooks/ledger/internal/adapter/http/handler"
	"github.com/tillbooks/ledger/internal/adapter/repository/postgres"
	"github.com/tillbooks/ledger/internal/infrastructure/directory"
	"github.com/tillbooks/ledger/internal/usecase"
	"github.com/tillbooks/ledger/tests/testutil"
)

// testStack wires the full application against a real database. Redis is
// left out: durable idempotency lives in Postgres, so the stack works
// without the response cache.
type testStack struct {
	DB         *testutil.TestDB
	Router     http.Handler
	AccountUC  *usecase.AccountUseCase
	TransferUC *usecase.TransferUseCase
	ApprovalUC *usecase.ApprovalUseCase
	LedgerUC   *usecase.LedgerUseCase
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	operationRepo := postgres.NewOperationRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	approvalRepo := postgres.NewApprovalRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	retrier := postgres.NewRetrier(zerolog.Nop())
	idGen := postgres.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, directory.NewAllowAll(), nil, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, retrier, accountRepo, operationRepo, auditRepo, outboxRepo, nil, idGen, nil)
	approvalUC := usecase.NewApprovalUseCase(txManager, approvalRepo, accountRepo, outboxRepo, transferUC, idGen, nil)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, auditRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		ApprovalHandler: handler.NewApprovalHandler(approvalUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		HealthHandler:   handler.NewHealthHandler(pool, nil),
		Logger:          zerolog.Nop(),
	})

	return &testStack{
		DB:         testDB,
		Router:     router,
		AccountUC:  accountUC,
		TransferUC: transferUC,
		ApprovalUC: approvalUC,
		LedgerUC:   ledgerUC,
	}
}

func strPtr(s string) *string { return &s }
