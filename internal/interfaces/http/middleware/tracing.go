package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request with otelgin and tags it with
// the request id and, once authentication has run, the caller. Health
// probes and swagger assets are not traced. Mount it after RequestID.
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlersChain {
	opts = append([]otelgin.Option{otelgin.WithFilter(traceable)}, opts...)
	return gin.HandlersChain{otelgin.Middleware(serviceName, opts...), traceAttributes}
}

func traceable(r *http.Request) bool {
	path := r.URL.Path
	return path != "/health" && path != "/api/v1/health" && !strings.HasPrefix(path, "/swagger")
}

func traceAttributes(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	c.Next()
	if claims := GetJWTClaims(c); claims != nil {
		span.SetAttributes(
			attribute.String("user_id", claims.UserID),
			attribute.String("user_role", claims.Role),
		)
	}
}
