package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	first, err := store.MarkProcessed(ctx, "settle:t:r:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "settle:t:r:k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	seen, err := store.IsProcessed(ctx, "settle:t:r:k1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, store.Forget(ctx, "settle:t:r:k1"))
	seen, _ = store.IsProcessed(ctx, "settle:t:r:k1")
	assert.False(t, seen)

	reused, err := store.MarkProcessed(ctx, "settle:t:r:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, reused)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, _ = store.MarkProcessed(ctx, "k", time.Minute)
	now = now.Add(2 * time.Minute)

	seen, _ := store.IsProcessed(ctx, "k")
	assert.False(t, seen)

	store.sweep()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryIdempotencyStore_OneWinnerUnderContention(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(ctx, "same-key", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewIdempotencyStore(ctx, config.LedgerConfig{IdempotencyBackend: "memory"}, config.RedisConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	_ = store.Close()

	_, err = NewIdempotencyStore(ctx, config.LedgerConfig{IdempotencyBackend: "memcached"}, config.RedisConfig{}, zap.NewNop())
	assert.Error(t, err)
}
