package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fenway-events/eventhub-api/internal/models"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
	"github.com/fenway-events/eventhub-api/pkg/response"
)

// RateLimit enforces a fixed-window per-user limit backed by Redis. Without a
// Redis client the limiter is a no-op rather than a hard dependency.
func RateLimit(client *redis.Client, logger *zap.Logger, action string, limit int, window time.Duration) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if claimsValue, exists := c.Get(ContextUserKey); exists {
			subject = claimsValue.(*models.JWTClaims).UserID
		}
		key := fmt.Sprintf("ratelimit:%s:%s", action, subject)

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down should not lock users out.
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(c.Request.Context(), key, window).Err(); err != nil {
				logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}

		if count > int64(limit) {
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
