package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/infrastructure/cache"
	"github.com/medrent/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	calls := 0
	fail := false
	router := gin.New()
	router.Use(Idempotency(IdempotencyConfig{Store: store}))
	router.POST("/rentals", func(c *gin.Context) {
		calls++
		if fail {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusCreated)
	})

	post := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/rentals", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("replay rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, post("k-1").Code)
		rec := post("k-1")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, dto.ErrCodeIdempotencyPending, decodeError(t, rec).Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusCreated, post("").Code)
		assert.Equal(t, http.StatusCreated, post("").Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("failure releases the key", func(t *testing.T) {
		calls = 0
		fail = true
		assert.Equal(t, http.StatusBadRequest, post("k-2").Code)
		fail = false
		assert.Equal(t, http.StatusCreated, post("k-2").Code)
		assert.Equal(t, 2, calls)
	})
}
