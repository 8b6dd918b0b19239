package redis

import (
	"context"
	"testing"
	"time"
)

func TestPaymentIntentStoreLookupMiss(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewPaymentIntentStore(client)

	paymentID, err := store.Lookup(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paymentID != "" {
		t.Fatalf("expected empty payment ID, got %q", paymentID)
	}
}

func TestPaymentIntentStoreSettleAndLookup(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewPaymentIntentStore(client)

	if err := store.Settle(context.Background(), "pi_123", "pay-1", time.Hour); err != nil {
		t.Fatalf("settle: %v", err)
	}

	paymentID, err := store.Lookup(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if paymentID != "pay-1" {
		t.Fatalf("payment ID = %q, want pay-1", paymentID)
	}
}

func TestPaymentIntentStoreExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewPaymentIntentStore(client)

	if err := store.Settle(context.Background(), "pi_123", "pay-1", time.Minute); err != nil {
		t.Fatalf("settle: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	paymentID, err := store.Lookup(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if paymentID != "" {
		t.Fatalf("expected expired intent, got %q", paymentID)
	}
}
