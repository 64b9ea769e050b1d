package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/userhub/userhub/internal/audit"
	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/middleware"
	"github.com/userhub/userhub/internal/user"
)

// RegisterUserRoutes wires the user CRUD endpoints. Registration and login
// stay public; mutations require authentication; listing is readable without
// a token but reveals more to authenticated callers.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, tokens *auth.TokenService, rec *audit.Recorder, d Deps) {
	requireAuth := middleware.RequireAuth(tokens, rec)
	optionalAuth := middleware.OptionalAuth(tokens)

	if d.Cache != nil {
		r.Post("/users", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), h.Create)
	} else {
		r.Post("/users", h.Create)
	}

	r.Get("/users", optionalAuth, h.List)
	r.Get("/users/:id", h.Get)
	r.Put("/users/:id", requireAuth, h.Update)
	r.Delete("/users/:id", requireAuth, h.Delete)
	r.Put("/users/:id/password", requireAuth, h.ChangePassword)
	r.Get("/search", h.Search)
	r.Get("/me", requireAuth, h.Profile)
}
