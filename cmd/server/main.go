package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/tillbooks/ledger/internal/adapter/http"
	"github.com/tillbooks/ledger/internal/adapter/http/handler"
	postgresRepo "github.com/tillbooks/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/tillbooks/ledger/internal/adapter/repository/redis"
	"github.com/tillbooks/ledger/internal/infrastructure/config"
	"github.com/tillbooks/ledger/internal/infrastructure/directory"
	"github.com/tillbooks/ledger/internal/infrastructure/eventpublisher"
	"github.com/tillbooks/ledger/internal/infrastructure/logger"
	"github.com/tillbooks/ledger/internal/infrastructure/metrics"
	"github.com/tillbooks/ledger/internal/infrastructure/postgres"
	infraRedis "github.com/tillbooks/ledger/internal/infrastructure/redis"
	"github.com/tillbooks/ledger/internal/usecase"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Run database migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis when configured
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = infraRedis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		appLogger.Info().Msg("connected to redis")
	} else {
		appLogger.Info().Msg("redis not configured, caching disabled")
	}

	// Party directory
	var partyDirectory usecase.PartyDirectory
	if cfg.PartyDirectoryURL != "" {
		partyDirectory = directory.NewClient(cfg.PartyDirectoryURL, cfg.PartyDirectoryTimeout)
	} else {
		partyDirectory = directory.NewAllowAll()
		appLogger.Info().Msg("party directory not configured, accepting all owner references")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	approvalRepo := postgresRepo.NewApprovalRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	retrier := postgresRepo.NewRetrier(appLogger)
	idGen := postgresRepo.NewULIDGenerator()

	var cache usecase.Cache
	var idempotencyStore usecase.IdempotencyStore
	if redisClient != nil {
		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	appMetrics := metrics.New()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, partyDirectory, cache, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, retrier, accountRepo, operationRepo, auditRepo, outboxRepo, cache, idGen, appMetrics)
	approvalUC := usecase.NewApprovalUseCase(txManager, approvalRepo, accountRepo, outboxRepo, transferUC, idGen, appMetrics)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, auditRepo)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	transferHandler := handler.NewTransferHandler(transferUC)
	approvalHandler := handler.NewApprovalHandler(approvalUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		TransferHandler:  transferHandler,
		ApprovalHandler:  approvalHandler,
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           appLogger,
	})

	// Outbox publisher
	var sink eventpublisher.Publisher
	if cfg.WebhookURL != "" {
		sink = eventpublisher.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookTimeout, appLogger)
	} else {
		sink = eventpublisher.NewLogPublisher(appLogger)
	}

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  sink,
		Logger:     appLogger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})

	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			appLogger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
