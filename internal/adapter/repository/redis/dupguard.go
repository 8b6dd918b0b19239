package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DuplicateGuard implements usecase.DuplicateGuard using Redis. A cash
// payment fingerprint is held for the duplicate window; a second
// submission of the same fingerprint inside the window is flagged.
type DuplicateGuard struct {
	client *redis.Client
	prefix string
}

// NewDuplicateGuard creates a new DuplicateGuard.
func NewDuplicateGuard(client *redis.Client) *DuplicateGuard {
	return &DuplicateGuard{
		client: client,
		prefix: "dup:",
	}
}

// CheckAndMark returns true if fingerprint was seen within the window.
func (g *DuplicateGuard) CheckAndMark(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	set, err := g.client.SetNX(ctx, g.prefix+fingerprint, "1", window).Result()
	if err != nil {
		return false, err
	}

	return !set, nil
}

// Unmark drops a fingerprint before its window expires. A failed
// allocation persists nothing, so its fingerprint must not block a
// corrected resubmission.
func (g *DuplicateGuard) Unmark(ctx context.Context, fingerprint string) error {
	return g.client.Del(ctx, g.prefix+fingerprint).Err()
}
