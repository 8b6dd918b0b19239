package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/iho/loanledger/internal/adapter/http"
	"github.com/iho/loanledger/internal/adapter/http/handler"
	"github.com/iho/loanledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/loanledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/loanledger/internal/adapter/repository/redis"
	"github.com/iho/loanledger/internal/infrastructure/config"
	"github.com/iho/loanledger/internal/infrastructure/logger"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/infrastructure/postgres"
	"github.com/iho/loanledger/internal/infrastructure/redis"
	"github.com/iho/loanledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	installmentRepo := postgresRepo.NewInstallmentRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	sessionRepo := postgresRepo.NewSessionRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	intents := redisRepo.NewPaymentIntentStore(redisClient)
	dupGuard := redisRepo.NewDuplicateGuard(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, installmentRepo, paymentRepo, idGen)
	paymentUC := usecase.NewPaymentUseCase(
		txManager, retrier,
		loanRepo, installmentRepo, paymentRepo, sessionRepo, movementRepo,
		intents, dupGuard, idGen,
	)
	advanceUC := usecase.NewAdvanceUseCase(
		txManager, retrier,
		loanRepo, installmentRepo, paymentRepo, sessionRepo, movementRepo,
		idGen,
	)
	sessionUC := usecase.NewSessionUseCase(txManager, retrier, sessionRepo, movementRepo, paymentRepo, idGen)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LoanHandler:    handler.NewLoanHandler(loanUC),
		PaymentHandler: handler.NewPaymentHandler(paymentUC, advanceUC),
		SessionHandler: handler.NewSessionHandler(sessionUC),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
		Logging:        middleware.NewLoggingMiddleware(log),
		Metrics:        m,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
