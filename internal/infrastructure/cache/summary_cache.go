package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/medrent/backend/internal/domain/report"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const summaryKeyPrefix = "medrent:analytics:summary:"

// RedisSummaryCache stores the analytics summary as JSON in Redis
type RedisSummaryCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSummaryCache creates a cache on a shared client
func NewRedisSummaryCache(client *redis.Client, logger *zap.Logger) *RedisSummaryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSummaryCache{client: client, logger: logger}
}

// Get returns the cached summary or nil on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, key string) (*report.AnalyticsSummary, error) {
	data, err := c.client.Get(ctx, summaryKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary report.AnalyticsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.Warn("Dropping corrupted summary cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, summaryKeyPrefix+key)
		return nil, nil
	}
	return &summary, nil
}

// Set stores summary for ttl
func (c *RedisSummaryCache) Set(ctx context.Context, key string, summary *report.AnalyticsSummary, ttl time.Duration) error {
	if summary == nil {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

type summaryEntry struct {
	value     report.AnalyticsSummary
	expiresAt time.Time
}

// InMemorySummaryCache keeps summaries in process memory
type InMemorySummaryCache struct {
	mu      sync.Mutex
	entries map[string]summaryEntry
	now     func() time.Time
}

// NewInMemorySummaryCache creates an empty in-memory cache
func NewInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{entries: make(map[string]summaryEntry), now: time.Now}
}

// Get returns a copy of the cached summary or nil on a miss
func (c *InMemorySummaryCache) Get(_ context.Context, key string) (*report.AnalyticsSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	v := e.value
	return &v, nil
}

// Set stores a copy of summary for ttl
func (c *InMemorySummaryCache) Set(_ context.Context, key string, summary *report.AnalyticsSummary, ttl time.Duration) error {
	if summary == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = summaryEntry{value: *summary, expiresAt: c.now().Add(ttl)}
	return nil
}

var (
	_ report.SummaryCache = (*RedisSummaryCache)(nil)
	_ report.SummaryCache = (*InMemorySummaryCache)(nil)
)
