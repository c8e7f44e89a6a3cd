package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key header
const MaxIdempotencyKeyLength = 200

// Idempotency rejects a replayed write carrying an Idempotency-Key that was
// already used by the same actor on the same route within ttl. A failed
// request releases its key, since nothing it did was committed, so the
// client can retry with the same key.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if raw == "" || !isWrite(c.Request.Method) {
			c.Next()
			return
		}
		if len(raw) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		key := idempotencyKey(c, raw)
		reserved, err := store.MarkProcessed(c.Request.Context(), key, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnavailable, "Idempotency store unavailable, retry later", GetRequestID(c)))
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest, "Request with this Idempotency-Key was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// the request context may already be cancelled by a disconnecting client
			if err := store.Release(context.WithoutCancel(c.Request.Context()), key); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

func idempotencyKey(c *gin.Context, raw string) string {
	return GetActor(c) + "|" + c.Request.Method + "|" + c.Request.URL.Path + "|" + raw
}
