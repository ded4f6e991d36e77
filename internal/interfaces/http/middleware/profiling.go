package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/infrastructure/telemetry"
)

// Profiling tags the CPU and heap samples taken while a request runs with
// its method, route pattern, resource and, once authentication has run, the
// caller's role. Health probes and swagger assets are left unlabelled.
// Mount it after the JWT middleware.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !traceable(c.Request) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	labels := map[string]string{
		telemetry.ProfilingLabelMethod:   c.Request.Method,
		telemetry.ProfilingLabelRoute:    route,
		telemetry.ProfilingLabelResource: resourceFromRoute(route),
	}
	if claims := GetJWTClaims(c); claims != nil {
		labels[telemetry.ProfilingLabelRole] = claims.Role
	}
	return labels
}

// resourceFromRoute returns the first static segment after the API prefix:
// "/api/v1/rentals/:id/periods" gives "rentals".
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			return ""
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
