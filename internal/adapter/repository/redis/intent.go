package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// PaymentIntentStore implements usecase.PaymentIntentStore using Redis.
// It maps a gateway reference to the payment that settled it, so a
// replayed webhook resolves without touching the loan. The unique index
// on payments.external_ref remains the hard guarantee; this store only
// short-circuits the common case.
type PaymentIntentStore struct {
	client *redis.Client
	prefix string
}

// NewPaymentIntentStore creates a new PaymentIntentStore.
func NewPaymentIntentStore(client *redis.Client) *PaymentIntentStore {
	return &PaymentIntentStore{
		client: client,
		prefix: "intent:",
	}
}

// Lookup returns the payment ID settled under ref, or "" if none.
func (s *PaymentIntentStore) Lookup(ctx context.Context, ref string) (string, error) {
	paymentID, err := s.client.Get(ctx, s.prefix+ref).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	return paymentID, err
}

// Settle records the payment that settled ref.
func (s *PaymentIntentStore) Settle(ctx context.Context, ref, paymentID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+ref, paymentID, ttl).Err()
}
