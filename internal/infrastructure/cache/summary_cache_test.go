package cache

import (
	"context"
	"testing"
	"time"

	"github.com/medrent/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySummaryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemorySummaryCache()
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	miss, err := cache.Get(ctx, "2025-05")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Set(ctx, "2025-05", &report.AnalyticsSummary{TotalPatients: 12}, 5*time.Minute))

	hit, err := cache.Get(ctx, "2025-05")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, int64(12), hit.TotalPatients)

	// callers get a copy
	hit.TotalPatients = 99
	again, _ := cache.Get(ctx, "2025-05")
	assert.Equal(t, int64(12), again.TotalPatients)

	clock = clock.Add(6 * time.Minute)
	expired, err := cache.Get(ctx, "2025-05")
	require.NoError(t, err)
	assert.Nil(t, expired)
}
