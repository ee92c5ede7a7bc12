// Package ratelimit provides a fixed window request limiter for fiber
// applications. Counters live in a Store so single-process deployments can
// use memory while multi-instance deployments share a redis backend.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Store tracks request counts per key inside a fixed window. Incr returns
// the updated count and the time remaining until the window resets.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, reset time.Duration, err error)
}

type Config struct {
	Store  Store
	Max    int
	Window time.Duration

	// KeyFunc derives the counter key from the request. Defaults to the
	// client IP, which matches limiting anonymous traffic per address.
	KeyFunc func(c *fiber.Ctx) string

	// OnError is invoked when the store fails. The middleware fails open:
	// a broken counter backend degrades limiting, not the service.
	OnError func(c *fiber.Ctx, err error)
}

func defaultKeyFunc(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s:%s", ip, c.Path())
}

// New builds the limiter middleware. Requests beyond Max inside the window
// are rejected with 429 and a Retry-After header.
func New(cfg Config) fiber.Handler {
	if cfg.Store == nil {
		panic("CONTACTS: rate limit middleware configuration: Store is required.")
	}
	if cfg.Max <= 0 {
		cfg.Max = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultKeyFunc
	}

	return func(c *fiber.Ctx) error {
		key := cfg.KeyFunc(c)

		count, reset, err := cfg.Store.Incr(c.UserContext(), key, cfg.Window)
		if err != nil {
			if cfg.OnError != nil {
				cfg.OnError(c, err)
			}
			return c.Next()
		}

		remaining := int64(cfg.Max) - count
		if remaining < 0 {
			remaining = 0
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Max) {
			retryAfter := int64(reset.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}

		return c.Next()
	}
}
