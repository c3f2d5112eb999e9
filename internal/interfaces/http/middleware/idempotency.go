package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"greencoin.backend/pkg/logger"
	"greencoin.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a repeated
// Idempotency-Key. Keys are scoped per user and route.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", c.GetString(UserIDKey), c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if val == processingMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"code":    "IDEMPOTENCY_CONFLICT",
					"message": "request already in progress",
				})
				return
			}
			replay(c, val)
			return
		case !errors.Is(err, goredis.Nil):
			// Redis down: serve without idempotency rather than fail
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "IDEMPOTENCY_CONFLICT",
				"message": "request already in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			var body json.RawMessage
			if w.body.Len() > 0 {
				body = w.body.Bytes()
			}
			payload, err := json.Marshal(cachedResponse{Status: status, Body: body})
			if err == nil {
				err = redisSet(ctx, storageKey, string(payload), RetentionDuration)
			}
			if err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
				_ = redisDel(ctx, storageKey)
			}
			return
		}
		// Failed requests may be retried
		_ = redisDel(ctx, storageKey)
	}
}

func replay(c *gin.Context, val string) {
	var cached cachedResponse
	if err := json.Unmarshal([]byte(val), &cached); err != nil || cached.Status == 0 {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"code":    "IDEMPOTENCY_CONFLICT",
			"message": "stored response is unreadable",
		})
		return
	}
	c.Header("X-Idempotency-Hit", "true")
	c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
	c.Abort()
}
