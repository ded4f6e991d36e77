package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/interfaces/http/dto"
	"github.com/medrent/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.NewDomainError("ALREADY_EXISTS", "taken"), http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"dependencies", shared.NewDomainError("HAS_DEPENDENCIES", "in use"), http.StatusConflict, dto.ErrCodeHasDependencies},
		{"invalid prefix", shared.NewDomainError("INVALID_PERIOD", "overlap"), http.StatusBadRequest, "INVALID_PERIOD"},
		{"unknown domain code", shared.NewDomainError("STOCK_LOCKED", "locked"), http.StatusUnprocessableEntity, "STOCK_LOCKED"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(t)
			h := &BaseHandler{}
			h.HandleError(tc.Context, tt.err)
			testutil.AssertError(t, tc.Recorder, tt.status, tt.code)
		})
	}
}

func TestHandleError_NilWritesNothing(t *testing.T) {
	tc := testutil.NewTestContext(t)
	h := &BaseHandler{}
	h.HandleError(tc.Context, nil)
	assert.Empty(t, tc.ResponseBody())
}

func TestParseID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		want := uuid.New()
		tc.Context.Params = gin.Params{{Key: "id", Value: want.String()}}

		got, ok := h.ParseID(tc.Context, "id")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("malformed", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		tc.Context.Params = gin.Params{{Key: "id", Value: "42"}}

		_, ok := h.ParseID(tc.Context, "id")
		assert.False(t, ok)
		testutil.AssertError(t, tc.Recorder, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}

func TestActor(t *testing.T) {
	h := &BaseHandler{}

	t.Run("authenticated", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		userID, locationID := uuid.New(), uuid.New()
		tc.Authenticate(userID, string(identity.RoleEmployee), &locationID)

		actor, ok := h.Actor(tc.Context)
		require.True(t, ok)
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, identity.RoleEmployee, actor.Role)
		require.NotNil(t, actor.StockLocationID)
		assert.Equal(t, locationID, *actor.StockLocationID)
	})

	t.Run("anonymous", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		_, ok := h.Actor(tc.Context)
		assert.False(t, ok)
		testutil.AssertError(t, tc.Recorder, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})
}

func TestSuccessWithMeta(t *testing.T) {
	tc := testutil.NewTestContext(t)
	h := &BaseHandler{}
	h.SuccessWithMeta(tc.Context, []string{"a", "b"}, 45, 2, 20)

	resp := testutil.AssertSuccess(t, tc.Recorder, http.StatusOK)
	meta := resp["meta"].(map[string]interface{})
	assert.Equal(t, float64(45), meta["total"])
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(3), meta["total_pages"])
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		state  string
	}{
		{"no database", nil, http.StatusOK, "healthy"},
		{"database up", stubPinger{}, http.StatusOK, "healthy"},
		{"database down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", NewSystemHandler("MedRent API", "test", tt.db).Health)

			w := testutil.DoJSON(t, engine, http.MethodGet, "/health", nil, nil)
			require.Equal(t, tt.status, w.Code)
			data := testutil.DecodeEnvelope(t, w)["data"].(map[string]interface{})
			assert.Equal(t, tt.state, data["status"])
		})
	}
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	engine := gin.New()
	engine.GET("/system/info", NewSystemHandler("MedRent API", "1.2.0", nil).GetSystemInfo)

	w := testutil.DoJSON(t, engine, http.MethodGet, "/system/info", nil, nil)
	data := testutil.AssertSuccess(t, w, http.StatusOK)["data"].(map[string]interface{})
	assert.Equal(t, "MedRent API", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}
