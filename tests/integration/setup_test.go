package integration

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/loanledger/internal/adapter/http"
	"github.com/iho/loanledger/internal/adapter/http/handler"
	"github.com/iho/loanledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/loanledger/internal/adapter/repository/redis"
	infraredis "github.com/iho/loanledger/internal/infrastructure/redis"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/tests/testutil"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	client, err := infraredis.NewClient(context.Background(), redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func redisIntents(t *testing.T) *redisrepo.PaymentIntentStore {
	t.Helper()
	return redisrepo.NewPaymentIntentStore(newTestRedis(t))
}

func redisDupGuard(t *testing.T) *redisrepo.DuplicateGuard {
	t.Helper()
	return redisrepo.NewDuplicateGuard(newTestRedis(t))
}

// newTestRouter wires the full HTTP stack against a real database.
func newTestRouter(t *testing.T, testDB *testutil.TestDB, redisClient *redis.Client) http.Handler {
	t.Helper()

	pool := testDB.Pool

	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier(zerolog.Nop())
	loanRepo := postgres.NewLoanRepository(pool)
	installmentRepo := postgres.NewInstallmentRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	intents := redisrepo.NewPaymentIntentStore(redisClient)
	dupGuard := redisrepo.NewDuplicateGuard(redisClient)
	idGen := postgres.NewULIDGenerator()

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

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		LoanHandler:    handler.NewLoanHandler(loanUC),
		PaymentHandler: handler.NewPaymentHandler(paymentUC, advanceUC),
		SessionHandler: handler.NewSessionHandler(sessionUC),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
	})
}
