package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func swaggerRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SwaggerConfig
		remoteAddr string
		expected   int
	}{
		{"disabled", SwaggerConfig{Enabled: false}, "127.0.0.1:1", http.StatusNotFound},
		{"open", SwaggerConfig{Enabled: true}, "203.0.113.9:1", http.StatusOK},
		{"single ip allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}, "127.0.0.1:1", http.StatusOK},
		{"single ip denied", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "192.168.1.1:1", http.StatusForbidden},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "10.50.100.200:1", http.StatusOK},
		{"cidr denied", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "172.16.0.1:1", http.StatusForbidden},
		{"bad entries ignored", SwaggerConfig{Enabled: true, AllowedIPs: []string{"nope", "10.0.0.0/99"}}, "10.0.0.1:1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := swaggerRequest(swaggerRouter(tt.cfg, nil), tt.remoteAddr)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	allow := func(c *gin.Context) {}

	cfg := SwaggerConfig{Enabled: true, RequireAuth: true}
	assert.Equal(t, http.StatusUnauthorized, swaggerRequest(swaggerRouter(cfg, deny), "127.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, swaggerRequest(swaggerRouter(cfg, allow), "127.0.0.1:1").Code)
}
