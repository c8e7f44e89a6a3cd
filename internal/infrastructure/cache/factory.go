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

const pingTimeout = 5 * time.Second

// FactoryOption configures NewIdempotencyStore
type FactoryOption func(*factory)

type factory struct {
	log           *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report which store was chosen
func WithLogger(log *zap.Logger) FactoryOption {
	return func(f *factory) { f.log = log }
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store instead of failing. Defaults to true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *factory) { f.allowFallback = allow }
}

// NewIdempotencyStore returns a Redis-backed store when cfg.Enabled and
// Redis answers a ping, and an in-memory store otherwise
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts ...FactoryOption) (shared.IdempotencyStore, error) {
	f := &factory{log: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled {
		f.log.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := client.Ping(pingCtx).Err()
	if err == nil {
		f.log.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
	}
	_ = client.Close()

	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}
	f.log.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.String("addr", cfg.Addr()),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
