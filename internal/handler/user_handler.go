package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Johaan1835/TestMatrix/internal/middleware"
	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// UserHandler wires HTTP → UserService: admin account management plus the
// self-service profile and password routes.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler returns a handler instance.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register mounts the account routes. Authentication runs for all of them;
// the management routes additionally require the admin role.
func (h *UserHandler) Register(r fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	r.Post("/add-users", auth, admin, h.add)
	r.Get("/list-users", auth, admin, h.list)
	r.Put("/list-users/:emp_id", auth, admin, h.update)
	r.Delete("/list-users/:emp_id", auth, admin, h.remove)

	r.Get("/profile", auth, h.profile)
	r.Post("/change-password", auth, h.changePassword)
	r.Get("/api/users", auth, h.writers)
}

func (h *UserHandler) add(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.svc.Add(c.UserContext(), req.Username, req.Email, req.Role, req.Password)
	if err != nil {
		return toHTTP(err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.svc.List(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(users)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	empID, err := strconv.Atoi(c.Params("emp_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "emp_id must be an integer")
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.svc.Update(c.UserContext(), empID, req.Username, req.Email, req.Role)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(user)
}

func (h *UserHandler) remove(c *fiber.Ctx) error {
	empID, err := strconv.Atoi(c.Params("emp_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "emp_id must be an integer")
	}
	if err := h.svc.Delete(c.UserContext(), empID); err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (h *UserHandler) profile(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}
	user, err := h.svc.Profile(c.UserContext(), claims.Username)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(user)
}

func (h *UserHandler) changePassword(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.ChangePassword(c.UserContext(), claims.Username, req.CurrentPassword, req.NewPassword); err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// writers serves the write-role accounts selectable when assigning a plan.
func (h *UserHandler) writers(c *fiber.Ctx) error {
	users, err := h.svc.Writers(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(users)
}
