package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/infrastructure/auth"
	"github.com/medrent/backend/internal/infrastructure/config"
	"github.com/medrent/backend/internal/interfaces/http/handler"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAPI mounts the API with handlers whose services are never reached:
// every request below is answered by middleware or by request parsing.
func newAPI(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		RefreshSecret:          "router-test-refresh-secret-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "medrent-test",
		MaxRefreshCount:        3,
	})

	engine := gin.New()
	RegisterAPI(engine, Handlers{
		System:       handler.NewSystemHandler("MedRent API", "test", nil),
		Auth:         handler.NewAuthHandler(nil),
		User:         handler.NewUserHandler(nil),
		Patient:      handler.NewPatientHandler(nil),
		Company:      handler.NewCompanyHandler(nil),
		Device:       handler.NewDeviceHandler(nil),
		Product:      handler.NewProductHandler(nil),
		Location:     handler.NewLocationHandler(nil),
		Stock:        handler.NewStockHandler(nil, nil),
		Payment:      handler.NewPaymentHandler(nil),
		CNAM:         handler.NewCNAMHandler(nil),
		Rental:       handler.NewRentalHandler(nil, nil),
		Sale:         handler.NewSaleHandler(nil, nil),
		Diagnostic:   handler.NewDiagnosticHandler(nil),
		Appointment:  handler.NewAppointmentHandler(nil),
		Task:         handler.NewTaskHandler(nil),
		Notification: handler.NewNotificationHandler(nil, nil),
		File:         handler.NewFileHandler(nil),
		Import:       handler.NewImportHandler(nil),
		Analytics:    handler.NewAnalyticsHandler(nil),
	}, APIConfig{
		Auth: middleware.JWTAuthMiddleware(jwtService),
	})
	return engine, jwtService
}

func tokenFor(t *testing.T, svc *auth.JWTService, role identity.Role) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: uuid.New(),
		Email:  strings.ToLower(string(role)) + "@medrent.tn",
		Role:   string(role),
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func call(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRegisterAPI(t *testing.T) {
	engine, jwtService := newAPI(t)
	admin := tokenFor(t, jwtService, identity.RoleAdmin)
	employee := tokenFor(t, jwtService, identity.RoleEmployee)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     string
		expected int
	}{
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"versioned health is public", http.MethodGet, "/api/v1/health", "", "", http.StatusOK},
		{"login skips auth", http.MethodPost, "/api/v1/auth/login", "", `{}`, http.StatusBadRequest},
		{"api requires a token", http.MethodGet, "/api/v1/patients", "", "", http.StatusUnauthorized},
		{"bad id rejected", http.MethodGet, "/api/v1/patients/not-a-uuid", employee, "", http.StatusBadRequest},
		{"users are admin only", http.MethodGet, "/api/v1/users", employee, "", http.StatusForbidden},
		{"admin passes the user guard", http.MethodDelete, "/api/v1/users/nope", admin, "", http.StatusBadRequest},
		{"review is admin only", http.MethodPatch, "/api/v1/admin/transfer-requests/" + uuid.NewString() + "/review", employee, `{}`, http.StatusForbidden},
		{"sweep is admin only", http.MethodPost, "/api/v1/admin/notifications/sweep", employee, "", http.StatusForbidden},
		{"bonds need a rental", http.MethodGet, "/api/v1/cnam-bonds", employee, "", http.StatusBadRequest},
		{"stock adjust validates body", http.MethodPatch, "/api/v1/stock/" + uuid.NewString(), employee, `{"quantity":-1}`, http.StatusBadRequest},
		{"upload needs a file", http.MethodPost, "/api/v1/files", employee, "", http.StatusBadRequest},
		{"invoice needs a sale id", http.MethodGet, "/api/v1/sales/not-a-uuid/invoice", employee, "", http.StatusBadRequest},
		{"invoice format is checked", http.MethodGet, "/api/v1/sales/" + uuid.NewString() + "/invoice?format=docx", employee, "", http.StatusBadRequest},
		{"preview needs an entity type", http.MethodPost, "/api/v1/import/preview", employee, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(engine, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.expected, w.Code, w.Body.String())
		})
	}
}
