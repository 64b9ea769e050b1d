package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/userhub/userhub/internal/user"
)

func setupLoginApp(t *testing.T) (*fiber.App, user.Repository) {
	t.Helper()
	repo := user.NewMemoryRepository()
	handler := NewHandler(testAuthService(repo), testTokenService(t, repo, time.Hour))

	app := fiber.New()
	app.Post("/api/v1/auth/login", handler.Login)
	return app, repo
}

func postLogin(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, 10000) // credential hashing is deliberately slow
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode body %q: %v", payload, err)
	}
	return resp.StatusCode, decoded
}

func TestLoginSuccess(t *testing.T) {
	app, repo := setupLoginApp(t)
	seedUser(t, repo, "a@b.com", "secret123")

	status, body := postLogin(t, app, `{"email":"a@b.com","password":"secret123"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "success" {
		t.Fatalf("expected success status, got %v", body["status"])
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("expected a token in the response")
	}
	if expiresIn, _ := body["expires_in"].(float64); int64(expiresIn) != 3600 {
		t.Fatalf("expected expires_in 3600, got %v", body["expires_in"])
	}
	userPayload, _ := body["user"].(map[string]any)
	if userPayload == nil {
		t.Fatal("expected user payload")
	}
	if _, leaked := userPayload["password"]; leaked {
		t.Fatal("stored credential must never appear in responses")
	}
}

func TestLoginBadCredentialsAreGeneric(t *testing.T) {
	app, repo := setupLoginApp(t)
	seedUser(t, repo, "a@b.com", "secret123")

	// Wrong password and unknown user produce indistinguishable responses.
	for _, body := range []string{
		`{"email":"a@b.com","password":"wrongpass"}`,
		`{"email":"nobody@b.com","password":"secret123"}`,
	} {
		status, decoded := postLogin(t, app, body)
		if status != fiber.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", body, status)
		}
		if decoded["message"] != "Invalid email or password" {
			t.Fatalf("expected generic message, got %v", decoded["message"])
		}
	}
}

func TestLoginValidation(t *testing.T) {
	app, _ := setupLoginApp(t)

	cases := []struct {
		body string
		want string
	}{
		{`{"password":"secret123"}`, "Email is required"},
		{`{"email":"a@b.com"}`, "Password is required"},
		{`{"email":"not-an-email","password":"secret123"}`, "Invalid email format"},
	}
	for _, tc := range cases {
		status, decoded := postLogin(t, app, tc.body)
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", tc.body, status)
		}
		if decoded["error"] != tc.want {
			t.Fatalf("expected error %q, got %v", tc.want, decoded["error"])
		}
	}
}
