package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/userhub/userhub/internal/audit"
	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/user"
)

// Machine-readable authorization error codes.
const (
	CodeTokenMissing  = "token_missing"
	CodeInvalidFormat = "invalid_format"
	CodeTokenInvalid  = "token_invalid_or_expired"
)

const bearerScheme = "Bearer"

// queryTokenParam is a fallback accepted for non-production and testing
// convenience; the Authorization header is the canonical location.
const queryTokenParam = "token"

// RequireAuth rejects requests that do not carry a valid session token. On
// success the resolved user is attached to the request-scoped locals under
// user.CurrentUserKey for the wrapped handler.
func RequireAuth(tokens *auth.TokenService, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, formatErr := extractToken(c)
		if formatErr {
			rec.AuthenticationFailure("invalid_token_format", "")
			return unauthorized(c, CodeInvalidFormat, "Invalid token format. Use: Bearer <token>")
		}
		if token == "" {
			rec.AuthenticationFailure("missing_token", "")
			return unauthorized(c, CodeTokenMissing, "Token is missing")
		}

		u, ok := tokens.ResolveUser(c.UserContext(), token)
		if !ok {
			rec.AuthenticationFailure("invalid_token", "")
			return unauthorized(c, CodeTokenInvalid, "Token is invalid or expired")
		}

		c.Locals(user.CurrentUserKey, u)
		return c.Next()
	}
}

// OptionalAuth attaches the resolved user when a valid token is present and
// runs the handler regardless. A missing, malformed or unresolvable token
// simply leaves the request without an identity.
func OptionalAuth(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, formatErr := extractToken(c)
		if !formatErr && token != "" {
			if u, ok := tokens.ResolveUser(c.UserContext(), token); ok {
				c.Locals(user.CurrentUserKey, u)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the identity attached by RequireAuth or OptionalAuth.
func CurrentUser(c *fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(user.CurrentUserKey).(user.User)
	return u, ok
}

// extractToken pulls the token from the Authorization header, falling back to
// the query parameter only when the header is absent. A present header must be
// exactly "Bearer <token>"; the scheme keyword is case-sensitive and any other
// shape reports a format error before validation is attempted.
func extractToken(c *fiber.Ctx) (token string, formatErr bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != bearerScheme {
			return "", true
		}
		return parts[1], false
	}
	return c.Query(queryTokenParam), false
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": msg, "code": code})
}
