package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/logger"
	"github.com/medrent/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyHeader is the request header carrying the client's key
const IdempotencyHeader = "Idempotency-Key"

// DefaultIdempotencyTTL is how long a key blocks replays
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a replayed creation request. Requests without an
// Idempotency-Key header pass through. A key is scoped to the user and the
// route and is released when the handler fails so the client may retry.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		scoped := "http:" + c.GetString(logger.GinUserIDKey) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key

		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			cfg.Logger.Error("Idempotency store unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyPending,
				"A request with this Idempotency-Key was already received",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(ctx, scoped); err != nil {
				cfg.Logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
