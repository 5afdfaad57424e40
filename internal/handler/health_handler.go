package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthHandler struct {
	client *mongo.Client
}

func NewHealthHandler(client *mongo.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	db := "connected"
	if h.client == nil {
		db = "not_configured"
	} else if err := h.client.Ping(c.UserContext(), nil); err != nil {
		db = "error"
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"db":     db,
	})
}
