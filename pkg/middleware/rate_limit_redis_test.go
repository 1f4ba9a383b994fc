package middleware

import (
	"net/http"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimit_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	now := time.Unix(1_700_000_000, 0) // aligned to a 10s window
	lim := NewRedisLimiter(client, 2, 10*time.Second).WithClock(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit("auth", lim))
	r.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/r", "10.1.0.1").Code)
	require.Equal(t, http.StatusOK, hit(r, "/r", "10.1.0.1").Code)

	now = now.Add(3 * time.Second)
	w := hit(r, "/r", "10.1.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "7", w.Header().Get("Retry-After"))

	// next window starts a fresh count
	now = now.Add(10 * time.Second)
	m.FastForward(10 * time.Second)
	require.Equal(t, http.StatusOK, hit(r, "/r", "10.1.0.1").Code)
}

func TestRedisRateLimit_SetsExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	now := time.Unix(1_700_000_000, 0)
	lim := NewRedisLimiter(client, 5, time.Minute).WithClock(func() time.Time { return now })

	ok, _, err := lim.Allow(t.Context(), "contact:10.1.0.2")
	require.NoError(t, err)
	require.True(t, ok)

	keys := m.Keys()
	require.Len(t, keys, 1)
	require.Greater(t, m.TTL(keys[0]), time.Duration(0))
}

func TestRedisRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	m.Close()

	r := gin.New()
	r.Use(RateLimit("general", NewRedisLimiter(client, 1, time.Minute)))
	r.GET("/r", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, hit(r, "/r", "10.1.0.3").Code)
	require.Equal(t, http.StatusOK, hit(r, "/r", "10.1.0.3").Code)
}
