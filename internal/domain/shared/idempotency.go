package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers submission keys so a repeated request is detected
type IdempotencyStore interface {
	// MarkProcessed records the key with a TTL.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key so the request may be submitted again
	Forget(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
