package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/userhub/userhub/internal/user"
)

// Handler exposes the login endpoint.
type Handler struct {
	svc    *Service
	tokens *TokenService
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(svc *Service, tokens *TokenService) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a session token. Bad credentials
// always produce the same generic 401 regardless of the underlying reason.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return badRequest(c, "Email is required")
	}
	if req.Password == "" {
		return badRequest(c, "Password is required")
	}
	if !user.ValidEmail(email) {
		return badRequest(c, "Invalid email format")
	}

	u, err := h.svc.Authenticate(c.UserContext(), email, req.Password)
	if err != nil {
		var failed *FailedError
		if errors.As(err, &failed) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"status":  "failed",
				"message": "Invalid email or password",
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication succeeded but token generation failed",
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":     "success",
		"message":    "Login successful",
		"user":       u.Profile(),
		"token":      token,
		"expires_in": int64(h.tokens.TTL().Seconds()),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
