package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Johaan1835/TestMatrix/internal/middleware"
	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// PlanHandler wires HTTP → PlanService: plan registry CRUD, execution rows,
// and the dashboard summary.
type PlanHandler struct {
	svc *service.PlanService
}

// NewPlanHandler returns a handler instance.
func NewPlanHandler(svc *service.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// Register mounts the plan routes. Order matters: the fixed segments
// (/user/..., /pie-data) register before the /:name wildcards.
func (h *PlanHandler) Register(r fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	r.Get("/api/test-plans", auth, h.list)
	r.Get("/api/test-plans/user/:username", auth, h.listForUser)
	r.Get("/api/test-plan-pie-data", auth, h.summary)
	r.Post("/api/test-plan", auth, admin, h.create)
	r.Get("/api/test-plan/:name", auth, h.rows)
	r.Delete("/api/test-plan/:name", auth, admin, h.remove)
	r.Get("/api/test-plan/:name/user/:username", auth, h.rowsForUser)
	r.Get("/api/test-plan/:plan/:id", auth, h.row)
	r.Put("/api/test-plan/:plan/:id", auth, middleware.RequireRoles(models.RoleAdmin, models.RoleWrite), h.updateRow)
}

func (h *PlanHandler) create(c *fiber.Ctx) error {
	var req struct {
		Name          string   `json:"name"`
		TestSuites    []string `json:"test_suite"`
		AssignedUsers []string `json:"assigned_users"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.svc.Create(c.UserContext(), req.Name, req.TestSuites, req.AssignedUsers)
	if err != nil {
		return toHTTP(err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PlanHandler) list(c *fiber.Ctx) error {
	plans, err := h.svc.List(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(plans)
}

func (h *PlanHandler) listForUser(c *fiber.Ctx) error {
	plans, err := h.svc.ListForUser(c.UserContext(), c.Params("username"))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(plans)
}

func (h *PlanHandler) rows(c *fiber.Ctx) error {
	rows, err := h.svc.Rows(c.UserContext(), c.Params("name"))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(rows)
}

func (h *PlanHandler) rowsForUser(c *fiber.Ctx) error {
	rows, err := h.svc.RowsForUser(c.UserContext(), c.Params("name"), c.Params("username"))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(rows)
}

func (h *PlanHandler) row(c *fiber.Ctx) error {
	row, err := h.svc.Row(c.UserContext(), c.Params("plan"), c.Params("id"))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(row)
}

func (h *PlanHandler) updateRow(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}

	var upd models.RowUpdate
	if err := c.BodyParser(&upd); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	row, err := h.svc.UpdateRow(c.UserContext(), c.Params("plan"), c.Params("id"), upd, claims.Username)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(row)
}

func (h *PlanHandler) remove(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("name")); err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{"message": "Test plan deleted successfully"})
}

// summary serves the dashboard pie charts for a named plan, or the newest
// plan visible to the caller when no name is given.
func (h *PlanHandler) summary(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}

	summary, err := h.svc.Summary(c.UserContext(), c.Query("testPlanName"), claims.Role, claims.Username)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(summary)
}
