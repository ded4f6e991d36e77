package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/infrastructure/auth"
	"github.com/medrent/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestProfiling(t *testing.T) {
	seen := map[string]string{}
	capture := func(c *gin.Context) {
		for _, key := range []string{
			telemetry.ProfilingLabelMethod,
			telemetry.ProfilingLabelRoute,
			telemetry.ProfilingLabelResource,
			telemetry.ProfilingLabelRole,
		} {
			if v, ok := pprof.Label(c.Request.Context(), key); ok {
				seen[key] = v
			}
		}
		c.Status(http.StatusOK)
	}

	router := gin.New()
	router.GET("/health", capture)
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(JWTClaimsKey, &auth.Claims{Role: "EMPLOYEE"})
		c.Next()
	}, Profiling())
	api.GET("/rentals/:id/periods", capture)

	t.Run("labels api requests by route and role", func(t *testing.T) {
		clear(seen)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rentals/42/periods", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "GET", seen[telemetry.ProfilingLabelMethod])
		assert.Equal(t, "/api/v1/rentals/:id/periods", seen[telemetry.ProfilingLabelRoute])
		assert.Equal(t, "rentals", seen[telemetry.ProfilingLabelResource])
		assert.Equal(t, "EMPLOYEE", seen[telemetry.ProfilingLabelRole])
	})

	t.Run("leaves health probes unlabelled", func(t *testing.T) {
		clear(seen)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, seen)
	})
}

func TestResourceFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/patients":             "patients",
		"/api/v1/sales/:id/invoice":    "sales",
		"/api/v2/stock/transfers":      "stock",
		"/api/v1/:id":                  "",
		"":                             "",
		"/api/v1/versions/v1beta/list": "versions",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceFromRoute(route), route)
	}
}
