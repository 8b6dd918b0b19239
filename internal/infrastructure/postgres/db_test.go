package postgres

import (
	"context"
	"testing"
)

func TestNewPoolInvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), "not a url ::", 10, 2)
	if err == nil {
		t.Fatalf("expected error for invalid database URL")
	}
}

func TestNewPoolWithConfigInvalidURL(t *testing.T) {
	_, err := NewPoolWithConfig(context.Background(), PoolConfig{
		DatabaseURL: "://bad",
		MaxConns:    5,
		MinConns:    1,
	})
	if err == nil {
		t.Fatalf("expected error for invalid database URL")
	}
}
