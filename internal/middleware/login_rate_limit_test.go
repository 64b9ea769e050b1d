package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, maxPerMin int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func attemptLogin(t *testing.T, app *fiber.App, email string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitBlocksAfterMax(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if status := attemptLogin(t, app, "a@b.com"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := attemptLogin(t, app, "a@b.com"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", status)
	}
}

func TestLoginRateLimitIsPerEmail(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 2)
	defer cleanup()

	attemptLogin(t, app, "a@b.com")
	attemptLogin(t, app, "a@b.com")
	if status := attemptLogin(t, app, "a@b.com"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 for exhausted email, got %d", status)
	}
	if status := attemptLogin(t, app, "other@b.com"); status != fiber.StatusOK {
		t.Fatalf("other email should not be limited, got %d", status)
	}
}

func TestLoginRateLimitFailsOpenWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if status := attemptLogin(t, app, "a@b.com"); status != fiber.StatusOK {
			t.Fatalf("expected pass-through without redis, got %d", status)
		}
	}
}
