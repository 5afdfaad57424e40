package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Johaan1835/TestMatrix/internal/service"
)

// BugHandler wires HTTP → BugService and the bug-linking operations on
// PlanService.
type BugHandler struct {
	bugs  *service.BugService
	plans *service.PlanService
}

// NewBugHandler returns a handler instance.
func NewBugHandler(bugs *service.BugService, plans *service.PlanService) *BugHandler {
	return &BugHandler{bugs: bugs, plans: plans}
}

// Register mounts the bug registry routes.
func (h *BugHandler) Register(r fiber.Router, auth fiber.Handler) {
	r.Post("/api/bugs/search", auth, h.search)
	r.Post("/api/bugs", auth, h.create)
	r.Put("/api/test-plan/:planName/:testcaseId/bug", auth, h.link)
	r.Get("/api/bugs/:id", auth, h.detail)
	r.Get("/api/bug-history", auth, h.history)
	r.Patch("/api/bug-status", auth, h.setStatus)
}

// search ranks the stored bugs against a candidate title so the tester sees
// likely duplicates before filing a new one.
func (h *BugHandler) search(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
		TopK  int    `json:"top_k"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	matches, err := h.bugs.Search(c.UserContext(), req.Title, req.TopK)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(matches)
}

func (h *BugHandler) create(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	bug, err := h.bugs.Create(c.UserContext(), req.Title, req.Description, req.Severity)
	if err != nil {
		return toHTTP(err)
	}
	return c.Status(fiber.StatusCreated).JSON(bug)
}

// link attaches a bug to one execution row, resetting the link status to Open.
func (h *BugHandler) link(c *fiber.Ctx) error {
	var req struct {
		BugID int `json:"bug_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.BugID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing bug_id in request body")
	}

	row, err := h.plans.LinkBug(c.UserContext(), c.Params("planName"), c.Params("testcaseId"), req.BugID)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{
		"message": "Bug linked successfully",
		"updated": row,
	})
}

// detail serves one bug joined to a specific execution row.
func (h *BugHandler) detail(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}

	detail, err := h.bugs.Detail(c.UserContext(), id, c.Query("testcase_id"), c.Query("test_plan_name"))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(detail)
}

func (h *BugHandler) history(c *fiber.Ctx) error {
	entries, err := h.bugs.History(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(entries)
}

func (h *BugHandler) setStatus(c *fiber.Ctx) error {
	var req struct {
		BugID        int    `json:"bug_id"`
		TestCaseID   string `json:"testcase_id"`
		TestPlanName string `json:"test_plan_name"`
		Status       string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.plans.SetBugStatus(c.UserContext(), req.BugID, req.TestCaseID, req.TestPlanName, req.Status); err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{"message": "Bug status updated successfully"})
}
