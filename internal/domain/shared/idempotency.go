package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried write is not applied twice.
type IdempotencyStore interface {
	// MarkProcessed reserves key for ttl.
	// Returns true if the key was newly reserved, false if it was already taken.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key is currently reserved
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a reservation so the request can be retried after a failure
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
