package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitRouter(t *testing.T, limit int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	router := gin.New()
	router.POST("/events", RateLimit(client, nil, "create-event", limit, window), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router, mr
}

func doPost(router *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	router, _ := newRateLimitRouter(t, 2, time.Minute)

	assert.Equal(t, http.StatusCreated, doPost(router))
	assert.Equal(t, http.StatusCreated, doPost(router))
	assert.Equal(t, http.StatusTooManyRequests, doPost(router))
	assert.Equal(t, http.StatusTooManyRequests, doPost(router))
}

func TestRateLimitWindowResets(t *testing.T) {
	router, mr := newRateLimitRouter(t, 1, time.Minute)

	require.Equal(t, http.StatusCreated, doPost(router))
	require.Equal(t, http.StatusTooManyRequests, doPost(router))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusCreated, doPost(router))
}

func TestRateLimitWithoutRedisIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/events", RateLimit(nil, nil, "create-event", 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusCreated, doPost(router))
	}
}
