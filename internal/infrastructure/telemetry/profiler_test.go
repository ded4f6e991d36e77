package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStartProfiler(t *testing.T) {
	t.Run("disabled profiler is a no-op", func(t *testing.T) {
		p, err := StartProfiler(config.TelemetryConfig{ServiceName: "medrent-backend"}, "test", zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.False(t, p.Enabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires an endpoint when enabled", func(t *testing.T) {
		p, err := StartProfiler(config.TelemetryConfig{
			ProfilingEnabled: true,
			ServiceName:      "medrent-backend",
		}, "test", zaptest.NewLogger(t))
		assert.Nil(t, p)
		assert.ErrorContains(t, err, "pyroscope endpoint is required")
	})

	t.Run("requires a service name when enabled", func(t *testing.T) {
		p, err := StartProfiler(config.TelemetryConfig{
			ProfilingEnabled:  true,
			PyroscopeEndpoint: "http://localhost:4040",
		}, "test", zaptest.NewLogger(t))
		assert.Nil(t, p)
		assert.ErrorContains(t, err, "service name is required")
	})

	t.Run("concurrent stops are safe", func(t *testing.T) {
		p, err := StartProfiler(config.TelemetryConfig{}, "test", zaptest.NewLogger(t))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, p.Stop())
			}()
		}
		wg.Wait()
	})
}

func TestProfileTypes(t *testing.T) {
	base := ProfileTypes(false)
	assert.Len(t, base, 6)
	assert.Contains(t, base, pyroscope.ProfileCPU)
	assert.Contains(t, base, pyroscope.ProfileGoroutines)
	assert.NotContains(t, base, pyroscope.ProfileMutexCount)

	withLocks := ProfileTypes(true)
	assert.Len(t, withLocks, 10)
	assert.Contains(t, withLocks, pyroscope.ProfileMutexDuration)
	assert.Contains(t, withLocks, pyroscope.ProfileBlockCount)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible inside the callback", func(t *testing.T) {
		var route, method string
		WithProfilingLabels(context.Background(), map[string]string{
			ProfilingLabelRoute:  "/api/v1/rentals/:id",
			ProfilingLabelMethod: "GET",
		}, func(ctx context.Context) {
			route, _ = pprof.Label(ctx, ProfilingLabelRoute)
			method, _ = pprof.Label(ctx, ProfilingLabelMethod)
		})
		assert.Equal(t, "/api/v1/rentals/:id", route)
		assert.Equal(t, "GET", method)
	})

	t.Run("drops high cardinality labels", func(t *testing.T) {
		var found bool
		WithProfilingLabels(context.Background(), map[string]string{
			"patient_id":            "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
			ProfilingLabelResource: "patients",
		}, func(ctx context.Context) {
			_, found = pprof.Label(ctx, "patient_id")
		})
		assert.False(t, found)
	})

	t.Run("runs the callback without labels", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
		assert.True(t, called)
	})
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"route":      strings.Repeat("x", 200),
		"method":     "POST",
		"request_id": "abc",
		"empty":      "",
	})
	require.Len(t, pairs, 4)
	assert.Equal(t, "method", pairs[0])
	assert.Equal(t, "POST", pairs[1])
	assert.Equal(t, "route", pairs[2])
	assert.Len(t, pairs[3], MaxLabelValueLength)
}
