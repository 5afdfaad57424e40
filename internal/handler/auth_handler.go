package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Johaan1835/TestMatrix/internal/service"
)

// AuthHandler wires HTTP → AuthService.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler returns a handler instance.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register mounts the session routes.
func (h *AuthHandler) Register(r fiber.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	token, user, err := h.svc.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return toHTTP(err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"username": user.Username,
			"role":     user.Role,
			"email":    user.Email,
		},
	})
}

// logout exists for client symmetry; tokens are stateless and simply expire.
func (h *AuthHandler) logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
