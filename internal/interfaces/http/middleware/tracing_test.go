package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	userID := uuid.NewString()

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing("medrent-test", otelgin.WithTracerProvider(provider))...)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(JWTClaimsKey, &auth.Claims{UserID: userID, Role: "ADMIN"})
		c.Next()
	})
	api.GET("/rentals/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rentals/42", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(httptest.NewRecorder(), req)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1, "health probes are not traced")
	assert.Contains(t, spans[0].Name(), "/api/v1/rentals/:id")
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("request_id", "req-123"))
	assert.Contains(t, attrs, attribute.String("user_id", userID))
	assert.Contains(t, attrs, attribute.String("user_role", "ADMIN"))
}
