package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"wefix.backend/pkg/logger"
	"wefix.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is how long a key stays claimed while its request is processed
	LockDuration = 30 * time.Second
	// RetentionDuration is how long a completed response is replayed
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
	maxKeyLength     = 128
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key on the same route, so a retried registration does not create
// a second pending verification. Requests without the header pass through.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "Idempotency-Key is too long",
			})
			return
		}

		ctx := c.Request.Context()
		storageKey := "idempotency:" + c.FullPath() + ":" + key

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "CONFLICT",
				"message": "Request already in progress",
			})
			return
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				c.Header("X-Idempotency-Hit", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
				c.Abort()
				return
			}
			_ = redisDel(ctx, storageKey)
		case !errors.Is(err, redis.Nil):
			logger.Warn(ctx, "Idempotency store unavailable, processing without it", zap.Error(err))
			c.Next()
			return
		}

		claimed, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "CONFLICT",
				"message": "Request already in progress",
			})
			return
		}

		w := &bodyRecorder{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: w.body.String()})
			_ = redisSet(ctx, storageKey, payload, RetentionDuration)
			return
		}
		_ = redisDel(ctx, storageKey)
	}
}
