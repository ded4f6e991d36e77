package cache

import (
	"github.com/medrent/backend/internal/domain/report"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends groups the stores that live in Redis when it is enabled and in
// process memory otherwise
type Backends struct {
	Client      *redis.Client // nil when running in memory
	Idempotency shared.IdempotencyStore
	Summary     report.SummaryCache
}

// NewBackends connects to Redis when cfg.Enabled. A connection failure is
// fatal in production and falls back to memory elsewhere.
func NewBackends(cfg config.RedisConfig, production bool, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Enabled {
		client, err := NewRedisClient(cfg)
		if err == nil {
			logger.Info("Using Redis for idempotency and caching", zap.String("addr", cfg.Addr()))
			return &Backends{
				Client:      client,
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Summary:     NewRedisSummaryCache(client, logger),
			}, nil
		}
		if production {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}
	return &Backends{
		Idempotency: NewInMemoryIdempotencyStore(),
		Summary:     NewInMemorySummaryCache(),
	}, nil
}

// Close releases the idempotency store and the Redis client
func (b *Backends) Close() error {
	_ = b.Idempotency.Close()
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}
