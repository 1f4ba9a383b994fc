package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
)

// Limiter decides whether one more request for key fits its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
	Name() string
}

// sweepEvery bounds how many Allow calls may pass between evictions of
// expired windows, in addition to the once-per-window sweep.
const sweepEvery = 1000

// MemoryLimiter is a per-process fixed-window counter: at most max requests
// per key in each window, the same policy as RedisLimiter.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*fixedWindow
	sweep   rate.Sometimes
}

type fixedWindow struct {
	start time.Time
	count int
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*fixedWindow),
		sweep:   rate.Sometimes{Every: sweepEvery, Interval: window},
	}
}

// WithClock replaces the wall clock used to pick the current window.
func (m *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	m.now = now
	return m
}

func (m *MemoryLimiter) Name() string { return "memory" }

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := m.now()
	start := now.Truncate(m.window)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep.Do(func() { m.evictBefore(start) })

	w, ok := m.windows[key]
	if !ok || !w.start.Equal(start) {
		w = &fixedWindow{start: start}
		m.windows[key] = w
	}
	if w.count >= m.max {
		return false, start.Add(m.window).Sub(now), nil
	}
	w.count++
	return true, 0, nil
}

// evictBefore drops every window that started before start. Callers hold mu.
func (m *MemoryLimiter) evictBefore(start time.Time) {
	for k, w := range m.windows {
		if w.start.Before(start) {
			delete(m.windows, k)
		}
	}
}

// RateLimit returns a Gin middleware enforcing lim for one route class.
// Requests are keyed by class and client IP.
func RateLimit(class string, lim Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		key := class + ":" + ip

		allowed, retryAfter, err := lim.Allow(c.Request.Context(), key)
		if err != nil {
			// a broken limiter backend must not take the site down
			logger.Warnf("rate limit %s/%s: %v", lim.Name(), class, err)
			c.Next()
			return
		}
		if !allowed {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			metrics.RateLimitRejected.WithLabelValues(lim.Name(), class).Inc()
			abort(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues(lim.Name(), class).Inc()
		c.Next()
	}
}
