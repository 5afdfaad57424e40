package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Johaan1835/TestMatrix/internal/ingest"
	"github.com/Johaan1835/TestMatrix/internal/middleware"
	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// UploadHandler accepts spreadsheet exports and bulk-loads them into the
// catalog. CSV arrives inline as text, Excel as a multipart file.
type UploadHandler struct {
	svc *service.TestCaseService
}

// NewUploadHandler returns a handler instance.
func NewUploadHandler(svc *service.TestCaseService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Register mounts the upload routes, admin only.
func (h *UploadHandler) Register(r fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	r.Post("/upload-csv", auth, admin, h.uploadCSV)
	r.Post("/upload-excel", auth, admin, h.uploadExcel)
}

func (h *UploadHandler) uploadCSV(c *fiber.Ctx) error {
	var req struct {
		CSVData   string `json:"csvData"`
		TestSuite string `json:"testSuite"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.CSVData == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing csvData")
	}

	cases, err := ingest.ParseCSV(strings.NewReader(req.CSVData), req.TestSuite)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	inserted, err := h.svc.Import(c.UserContext(), cases)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{
		"message":  "CSV uploaded successfully",
		"inserted": inserted,
	})
}

func (h *UploadHandler) uploadExcel(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unreadable file")
	}
	defer f.Close()

	cases, err := ingest.ParseExcel(f, c.FormValue("testSuite"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	inserted, err := h.svc.Import(c.UserContext(), cases)
	if err != nil {
		return toHTTP(err)
	}
	return c.JSON(fiber.Map{
		"message":  "Excel uploaded successfully",
		"inserted": inserted,
	})
}
