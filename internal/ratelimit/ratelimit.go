package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter over redis, injected wherever mutation
// routes need guarding. A nil redis client admits everything so dev setups
// and tests work without redis.
type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func New(redisClient *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{redis: redisClient, limit: limit, window: window}
}

// Allow reports whether key may proceed in the current window. Redis being
// unreachable admits the request; the limiter must not take writes down.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.redis == nil || l.limit <= 0 {
		return true
	}

	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))
	n, err := l.redis.Incr(ctx, bucket).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		l.redis.Expire(ctx, bucket, l.window)
	}
	return n <= int64(l.limit)
}

// Middleware keys by authenticated user when available, client IP otherwise.
func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, _ := c.Locals("user_id").(string)
		if key == "" {
			key = c.IP()
		}
		if !l.Allow(c.Context(), key) {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
