package user

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// CurrentUserKey is the fiber locals key under which the auth middleware
// stores the resolved User for the duration of one request.
const CurrentUserKey = "current_user"

// Handler exposes user CRUD endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a user HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Create registers a new user.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	u, err := h.service.Create(c.UserContext(), CreateInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": u.Profile()})
}

// Get returns a single user by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	u, err := h.service.Get(c.UserContext(), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": u.Profile()})
}

// Update applies profile changes to a user.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	u, err := h.service.Update(c.UserContext(), int64(id), UpdateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": u.Profile()})
}

// Delete removes a user.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	if err := h.service.Delete(c.UserContext(), int64(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// List returns all users. Authenticated callers receive full profiles,
// anonymous callers a reduced view without emails.
func (h *Handler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	if _, authed := c.Locals(CurrentUserKey).(User); authed {
		profiles := make([]Profile, 0, len(users))
		for _, u := range users {
			profiles = append(profiles, u.Profile())
		}
		return c.JSON(fiber.Map{"users": profiles})
	}

	profiles := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}
	return c.JSON(fiber.Map{"users": profiles})
}

// Search returns users whose name matches the query parameter.
func (h *Handler) Search(c *fiber.Ctx) error {
	users, err := h.service.Search(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	profiles := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}
	return c.JSON(fiber.Map{"users": profiles})
}

// Profile returns the authenticated caller's own record.
func (h *Handler) Profile(c *fiber.Ctx) error {
	current, ok := c.Locals(CurrentUserKey).(User)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	return c.JSON(fiber.Map{"user": current.Profile()})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword rotates the caller's credential after verifying the current
// one. Users may only change their own password.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	current, ok := c.Locals(CurrentUserKey).(User)
	if !ok || current.ID != int64(id) {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "You may only change your own password"})
	}
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.service.ChangePassword(c.UserContext(), int64(id), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// respondError translates service errors into structured responses without
// leaking internal detail.
func respondError(c *fiber.Ctx, err error) error {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		return badRequest(c, ve.Error())
	case errors.Is(err, ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, ErrEmailTaken):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "User with this email already exists"})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
