package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/userhub/userhub/internal/logging"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *atomic.Int64, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))

	var calls atomic.Int64
	app.Post("/users", func(c *fiber.Ctx) error {
		calls.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": calls.Load()})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &calls, cleanup
}

func postUsers(t *testing.T, app *fiber.App, idemKey string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/users", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if idemKey != "" {
		req.Header.Set(idempotencyKeyHeader, idemKey)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(payload)
}

func TestIdempotencyHeaderIsOptional(t *testing.T) {
	app, calls, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		status, _ := postUsers(t, app, "")
		if status != fiber.StatusCreated {
			t.Fatalf("expected %d, got %d", fiber.StatusCreated, status)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("requests without a key should both reach the handler, got %d calls", calls.Load())
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	status, first := postUsers(t, app, "abc123")
	if status != fiber.StatusCreated {
		t.Fatalf("expected %d, got %d", fiber.StatusCreated, status)
	}

	status, second := postUsers(t, app, "abc123")
	if status != fiber.StatusCreated {
		t.Fatalf("expected cached status %d, got %d", fiber.StatusCreated, status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s, got %s", first, second)
	}
	if calls.Load() != 1 {
		t.Fatalf("handler should run once for a repeated key, got %d calls", calls.Load())
	}
}

func TestIdempotencyDistinctKeys(t *testing.T) {
	app, calls, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	postUsers(t, app, "key-1")
	postUsers(t, app, "key-2")
	if calls.Load() != 2 {
		t.Fatalf("distinct keys should each reach the handler, got %d calls", calls.Load())
	}
}
