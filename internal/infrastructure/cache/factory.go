package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by ledger.idempotency_backend.
// A redis backend that cannot be reached is a startup error; it never
// silently degrades to per-process keys.
func NewIdempotencyStore(ctx context.Context, ledgerCfg config.LedgerConfig, redisCfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch ledgerCfg.IdempotencyBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisCfg.Addr(), err)
		}
		logger.Info("using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
		return NewRedisIdempotencyStore(client, ""), nil
	case "memory", "":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(5 * time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", ledgerCfg.IdempotencyBackend)
	}
}
