package server

import (
	"github.com/redis/go-redis/v9"

	"github.com/portfolio-site/portfolio-api/internal/config"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/middleware"
)

// Limiters builds one limiter per configured class. Redis-backed limiters
// are used when requested and a client is available; otherwise each class
// gets a per-process token bucket. Disabled rate limiting yields nil.
func Limiters(cfg config.RateLimitConfig, client *redis.Client) map[string]middleware.Limiter {
	if !cfg.Enabled {
		logger.Warnf("rate limiting disabled")
		return nil
	}
	useRedis := cfg.UseRedis && client != nil
	if cfg.UseRedis && client == nil {
		logger.Warnf("RATE_LIMIT_USE_REDIS set but Redis is unavailable, using in-memory limiters")
	}
	out := make(map[string]middleware.Limiter, len(cfg.Classes))
	for name, class := range cfg.Classes {
		if useRedis {
			out[name] = middleware.NewRedisLimiter(client, class.Max, class.Window)
		} else {
			out[name] = middleware.NewMemoryLimiter(class.Max, class.Window)
		}
		logger.Debugf("rate limit %s: %d per %s", name, class.Max, class.Window)
	}
	return out
}
