package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Johaan1835/TestMatrix/internal/middleware"
	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// TestCaseHandler wires HTTP → TestCaseService: the master catalog plus the
// pending-request review queue.
type TestCaseHandler struct {
	svc *service.TestCaseService
}

// NewTestCaseHandler returns a handler instance.
func NewTestCaseHandler(svc *service.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{svc: svc}
}

// Register mounts the catalog and pending-request routes.
func (h *TestCaseHandler) Register(r fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	write := middleware.RequireRoles(models.RoleWrite)

	r.Get("/api/test-cases", auth, h.list)
	r.Get("/api/test-suites", auth, h.suites)
	r.Get("/api/check-table", auth, h.checkTable)
	r.Get("/api/suite-ids", auth, admin, h.suiteIDs)
	r.Post("/api/testcases", auth, admin, h.create)

	r.Post("/api/submit-test-case", auth, write, h.submit)
	r.Get("/api/pending-requests/admin", auth, admin, h.pendingAll)
	r.Get("/api/pending-requests/:id", auth, admin, h.pendingByID)
	r.Put("/api/pending-requests/:id", auth, admin, h.updatePending)
	r.Post("/api/pending-requests/:id/approve", auth, admin, h.approve)
	r.Post("/api/pending-requests/:id/reject", auth, admin, h.reject)
	r.Get("/api/pending-request/user", auth, write, h.userRequests)
	r.Get("/api/pending-request/:testcaseId", auth, write, h.userRequestByID)
	r.Put("/api/pending-request/:testcaseId", auth, write, h.updateUserRequest)
}

func (h *TestCaseHandler) list(c *fiber.Ctx) error {
	cases, err := h.svc.List(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(cases)
}

func (h *TestCaseHandler) suites(c *fiber.Ctx) error {
	suites, err := h.svc.Suites(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(suites)
}

// checkTable tells the dashboard whether the catalog has been seeded yet.
func (h *TestCaseHandler) checkTable(c *fiber.Ctx) error {
	count, err := h.svc.Count(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{
		"tableExists": count > 0,
		"rowCount":    count,
	})
}

// suiteIDs groups scenario ids per suite for the plan creation form.
func (h *TestCaseHandler) suiteIDs(c *fiber.Ctx) error {
	param := c.Query("suites")
	if param == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing suites parameter")
	}
	ids, err := h.svc.ScenarioIDsBySuite(c.UserContext(), strings.Split(param, ","))
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(ids)
}

func (h *TestCaseHandler) create(c *fiber.Ctx) error {
	var tc models.TestCase
	if err := c.BodyParser(&tc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.Create(c.UserContext(), tc)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(created)
}

func (h *TestCaseHandler) submit(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}

	var pr models.PendingRequest
	if err := c.BodyParser(&pr); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	pr.SubmittedBy = claims.Username

	submitted, err := h.svc.Submit(c.UserContext(), pr)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{
		"message": "Submitted for admin approval.",
		"data":    submitted,
	})
}

func (h *TestCaseHandler) pendingAll(c *fiber.Ctx) error {
	requests, err := h.svc.PendingAll(c.UserContext())
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(requests)
}

func (h *TestCaseHandler) pendingByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	pr, err := h.svc.PendingByID(c.UserContext(), id)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(pr)
}

func (h *TestCaseHandler) updatePending(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	var upd models.RowUpdate
	if err := c.BodyParser(&upd); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	pr, err := h.svc.UpdatePending(c.UserContext(), id, upd)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(pr)
}

func (h *TestCaseHandler) approve(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	if err := h.svc.Approve(c.UserContext(), id); err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{"message": "Request approved and added to the catalog"})
}

func (h *TestCaseHandler) reject(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id must be an integer")
	}
	if err := h.svc.Reject(c.UserContext(), id); err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{"message": "Request rejected"})
}

func (h *TestCaseHandler) userRequests(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}
	requests, err := h.svc.UserRequests(c.UserContext(), claims.Username)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(requests)
}

func (h *TestCaseHandler) userRequestByID(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}
	id, err := strconv.Atoi(c.Params("testcaseId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "testcaseId must be an integer")
	}
	pr, err := h.svc.UserRequestByID(c.UserContext(), id, claims.Username)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(pr)
}

func (h *TestCaseHandler) updateUserRequest(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}
	id, err := strconv.Atoi(c.Params("testcaseId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "testcaseId must be an integer")
	}
	var upd models.RowUpdate
	if err := c.BodyParser(&upd); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	pr, err := h.svc.UpdateUserRequest(c.UserContext(), id, claims.Username, upd)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(pr)
}
