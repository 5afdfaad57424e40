package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// overlapEmbedder scores titles by shared lowercase words.
type overlapEmbedder struct {
	vocab []string
}

func (e *overlapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(e.vocab))
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = true
	}
	for i, w := range e.vocab {
		if words[w] {
			vec[i] = 1
		}
	}
	return vec, nil
}

type stubBugRepo struct {
	bugs   []models.Bug
	nextID int
}

func (r *stubBugRepo) Insert(ctx context.Context, bug models.Bug) (models.Bug, error) {
	r.nextID++
	bug.ID = r.nextID
	r.bugs = append(r.bugs, bug)
	return bug, nil
}

func (r *stubBugRepo) Embedded(ctx context.Context) ([]models.Bug, error) {
	var out []models.Bug
	for _, b := range r.bugs {
		if b.Embedding != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubBugRepo) History(ctx context.Context) ([]models.BugHistoryEntry, error) {
	return []models.BugHistoryEntry{}, nil
}

func (r *stubBugRepo) Detail(ctx context.Context, bugID int, testcaseID, planName string) (models.BugDetail, error) {
	return models.BugDetail{}, service.ErrNotFound
}

// stubPlanRepo serves a single plan with one linkable row.
type stubPlanRepo struct {
	plan models.TestPlan
	row  models.PlanRow
}

func (r *stubPlanRepo) Insert(ctx context.Context, plan models.TestPlan, rows []models.PlanRow) (models.TestPlan, error) {
	return plan, nil
}
func (r *stubPlanRepo) List(ctx context.Context) ([]models.TestPlan, error) { return nil, nil }
func (r *stubPlanRepo) ListForUser(ctx context.Context, username string) ([]models.TestPlan, error) {
	return nil, nil
}
func (r *stubPlanRepo) FindByName(ctx context.Context, name string) (models.TestPlan, error) {
	if name != r.plan.Name {
		return models.TestPlan{}, fmt.Errorf("test plan %q: %w", name, service.ErrNotFound)
	}
	return r.plan, nil
}
func (r *stubPlanRepo) Latest(ctx context.Context) (models.TestPlan, error) { return r.plan, nil }
func (r *stubPlanRepo) LatestForUser(ctx context.Context, username string) (models.TestPlan, error) {
	return r.plan, nil
}
func (r *stubPlanRepo) Delete(ctx context.Context, planID primitive.ObjectID) error { return nil }
func (r *stubPlanRepo) Rows(ctx context.Context, planID primitive.ObjectID) ([]models.PlanRow, error) {
	return []models.PlanRow{r.row}, nil
}
func (r *stubPlanRepo) Row(ctx context.Context, planID primitive.ObjectID, testcaseID string) (models.PlanRow, error) {
	return r.row, nil
}
func (r *stubPlanRepo) UpdateRow(ctx context.Context, planID primitive.ObjectID, testcaseID string, upd models.RowUpdate, executedBy string) (models.PlanRow, error) {
	return r.row, nil
}
func (r *stubPlanRepo) LinkBug(ctx context.Context, planID primitive.ObjectID, testcaseID string, bugID int) (models.PlanRow, error) {
	if testcaseID != r.row.TestCaseID {
		return models.PlanRow{}, service.ErrNotFound
	}
	r.row.BugID = &bugID
	r.row.BugStatus = models.BugOpen
	return r.row, nil
}
func (r *stubPlanRepo) SetBugStatus(ctx context.Context, planID primitive.ObjectID, testcaseID string, bugID int, status string) error {
	if testcaseID != r.row.TestCaseID || r.row.BugID == nil || *r.row.BugID != bugID {
		return service.ErrNotFound
	}
	r.row.BugStatus = status
	return nil
}
func (r *stubPlanRepo) Distribution(ctx context.Context, planID primitive.ObjectID, field string) ([]models.Distribution, error) {
	return nil, nil
}

type catalogStub struct{}

func (catalogStub) BySuites(ctx context.Context, suites []string) ([]models.TestCase, error) {
	return nil, nil
}

func newBugTestApp(t *testing.T) (*fiber.App, *stubBugRepo, *stubPlanRepo) {
	t.Helper()

	bugRepo := &stubBugRepo{}
	planRepo := &stubPlanRepo{
		plan: models.TestPlan{ID: primitive.NewObjectID(), Name: "Sprint1"},
		row:  models.PlanRow{TestCaseID: "TC_001"},
	}
	emb := &overlapEmbedder{vocab: []string{"login", "button", "mobile", "dashboard", "email", "fails", "devices"}}

	bugSvc := service.NewBugService(bugRepo, emb)
	planSvc := service.NewPlanService(planRepo, catalogStub{})

	app := fiber.New()
	noAuth := func(c *fiber.Ctx) error { return c.Next() }
	NewBugHandler(bugSvc, planSvc).Register(app, noAuth)
	return app, bugRepo, planRepo
}

func postJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestBugSearchEndpoint(t *testing.T) {
	app, _, _ := newBugTestApp(t)

	for _, title := range []string{
		"Login button not working on mobile",
		"Dashboard layout breaks on small screens",
		"Password reset email not sent",
	} {
		resp := postJSON(t, app, http.MethodPost, "/api/bugs", fiber.Map{
			"title": title, "description": "seeded", "severity": "high",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seeding %q: status %d", title, resp.StatusCode)
		}
	}

	resp := postJSON(t, app, http.MethodPost, "/api/bugs/search", fiber.Map{
		"title": "Login fails on mobile devices",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d", resp.StatusCode)
	}

	var matches []models.BugMatch
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		t.Fatalf("decoding matches: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].Title != "Login button not working on mobile" {
		t.Errorf("best match = %q", matches[0].Title)
	}
}

func TestBugSearchEndpointRequiresTitle(t *testing.T) {
	app, _, _ := newBugTestApp(t)
	resp := postJSON(t, app, http.MethodPost, "/api/bugs/search", fiber.Map{"title": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateBugEndpointValidation(t *testing.T) {
	app, repo, _ := newBugTestApp(t)
	resp := postJSON(t, app, http.MethodPost, "/api/bugs", fiber.Map{
		"title": "t", "description": "d", "severity": "catastrophic",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(repo.bugs) != 0 {
		t.Errorf("invalid bug was stored")
	}
}

func TestLinkBugEndpoint(t *testing.T) {
	app, _, planRepo := newBugTestApp(t)

	resp := postJSON(t, app, http.MethodPut, "/api/test-plan/Sprint1/TC_001/bug", fiber.Map{"bug_id": 7})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if planRepo.row.BugID == nil || *planRepo.row.BugID != 7 || planRepo.row.BugStatus != models.BugOpen {
		t.Errorf("row after link: %+v", planRepo.row)
	}

	resp = postJSON(t, app, http.MethodPut, "/api/test-plan/Nope/TC_001/bug", fiber.Map{"bug_id": 7})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown plan: status = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, app, http.MethodPut, "/api/test-plan/Sprint1/TC_001/bug", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing bug_id: status = %d, want 400", resp.StatusCode)
	}
}

func TestBugStatusEndpoint(t *testing.T) {
	app, _, planRepo := newBugTestApp(t)
	id := 7
	planRepo.row.BugID = &id
	planRepo.row.BugStatus = models.BugOpen

	resp := postJSON(t, app, http.MethodPatch, "/api/bug-status", fiber.Map{
		"bug_id": 7, "testcase_id": "TC_001", "test_plan_name": "Sprint1", "status": "Resolved",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if planRepo.row.BugStatus != models.BugResolved {
		t.Errorf("row status = %q, want Resolved", planRepo.row.BugStatus)
	}

	resp = postJSON(t, app, http.MethodPatch, "/api/bug-status", fiber.Map{
		"bug_id": 7, "testcase_id": "TC_001", "test_plan_name": "Sprint1", "status": "Fixed",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid status: got %d, want 400", resp.StatusCode)
	}
}
