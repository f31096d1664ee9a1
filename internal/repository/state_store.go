package repository

import (
	"context"
	"time"
)

// StateStore abstracts ephemeral key-value state, used to track live refresh
// token IDs so logout and rotation can revoke them.
// Implementations: Redis (production) or in-memory (local dev, tests).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
