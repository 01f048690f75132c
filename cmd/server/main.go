package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/ledgerhouse/cashbook/internal/adapter/http"
	"github.com/ledgerhouse/cashbook/internal/adapter/http/handler"
	"github.com/ledgerhouse/cashbook/internal/adapter/http/middleware"
	postgresRepo "github.com/ledgerhouse/cashbook/internal/adapter/repository/postgres"
	redisRepo "github.com/ledgerhouse/cashbook/internal/adapter/repository/redis"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/config"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/postgres"
	"github.com/ledgerhouse/cashbook/internal/infrastructure/redis"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	accountRepo := postgresRepo.NewAccountRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	session := middleware.NewSessionProvider()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, expenseRepo, idGen, cache)
	paymentUC := usecase.NewPaymentUseCase(txManager, retrier, accountRepo, ledgerRepo, idGen, session, cache, cfg.BaseCurrency)
	devolutionUC := usecase.NewDevolutionUseCase(txManager, retrier, expenseRepo, ledgerRepo, idGen, session)
	ledgerUC := usecase.NewLedgerUseCase(txManager, ledgerRepo, accountRepo, expenseRepo, session)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:    handler.NewAccountHandler(accountUC),
		PaymentHandler:    handler.NewPaymentHandler(paymentUC),
		DevolutionHandler: handler.NewDevolutionHandler(devolutionUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  idempotencyStore,
		Logger:            log.Logger,
	})

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
		log.Info().Str("port", cfg.HTTPPort).Str("base_currency", cfg.BaseCurrency).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
