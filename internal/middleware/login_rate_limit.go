package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit caps login attempts per email (or client IP when the body
// carries no email) using Redis. The limiter fails open: without Redis, or on
// cache errors, requests pass through.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Email string `json:"email"`
		}
		_ = c.BodyParser(&req)
		key := strings.TrimSpace(req.Email)
		if key == "" {
			key = c.IP()
		}
		cacheKey := "rl:login:" + key
		cnt, err := cache.Incr(c.UserContext(), cacheKey).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), cacheKey, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": "Too many login attempts. Please try again later.",
			})
		}
		return c.Next()
	}
}
