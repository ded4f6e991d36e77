package cache

import (
	"testing"

	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackends(t *testing.T) {
	t.Run("in memory when redis is disabled", func(t *testing.T) {
		b, err := NewBackends(config.RedisConfig{Enabled: false}, true, nil)
		require.NoError(t, err)
		defer b.Close()

		assert.Nil(t, b.Client)
		assert.IsType(t, &InMemoryIdempotencyStore{}, b.Idempotency)
		assert.IsType(t, &InMemorySummaryCache{}, b.Summary)
	})

	t.Run("falls back outside production when redis is unreachable", func(t *testing.T) {
		b, err := NewBackends(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, false, nil)
		require.NoError(t, err)
		defer b.Close()
		assert.Nil(t, b.Client)
	})

	t.Run("fails in production when redis is unreachable", func(t *testing.T) {
		_, err := NewBackends(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, true, nil)
		assert.Error(t, err)
	})
}
