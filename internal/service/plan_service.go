package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// Fresh execution rows start here; testers overwrite them as they work.
const (
	initialTestResult = "not-tested"
	initialStatus     = "new"
)

// PlanRepository persists test plans and their execution rows.
type PlanRepository interface {
	// Insert writes the registry entry and its snapshot rows together.
	Insert(ctx context.Context, plan models.TestPlan, rows []models.PlanRow) (models.TestPlan, error)
	List(ctx context.Context) ([]models.TestPlan, error)
	ListForUser(ctx context.Context, username string) ([]models.TestPlan, error)
	FindByName(ctx context.Context, name string) (models.TestPlan, error)
	Latest(ctx context.Context) (models.TestPlan, error)
	LatestForUser(ctx context.Context, username string) (models.TestPlan, error)
	Delete(ctx context.Context, planID primitive.ObjectID) error

	Rows(ctx context.Context, planID primitive.ObjectID) ([]models.PlanRow, error)
	Row(ctx context.Context, planID primitive.ObjectID, testcaseID string) (models.PlanRow, error)
	UpdateRow(ctx context.Context, planID primitive.ObjectID, testcaseID string, upd models.RowUpdate, executedBy string) (models.PlanRow, error)
	// LinkBug points the row at bugID and resets bug_status to Open.
	LinkBug(ctx context.Context, planID primitive.ObjectID, testcaseID string, bugID int) (models.PlanRow, error)
	// SetBugStatus updates bug_status on the row matching the full triple.
	SetBugStatus(ctx context.Context, planID primitive.ObjectID, testcaseID string, bugID int, status string) error
	Distribution(ctx context.Context, planID primitive.ObjectID, field string) ([]models.Distribution, error)
}

// CatalogReader is the slice of the catalog repository the plan service
// needs to snapshot rows from.
type CatalogReader interface {
	BySuites(ctx context.Context, suites []string) ([]models.TestCase, error)
}

// PlanService manages test plans: creating them as snapshots of the master
// catalog, serving execution rows to assigned testers, and the bug-linking
// workflow on those rows.
type PlanService struct {
	repo    PlanRepository
	catalog CatalogReader
}

// NewPlanService wires the plan repository and a catalog reader.
func NewPlanService(repo PlanRepository, catalog CatalogReader) *PlanService {
	return &PlanService{repo: repo, catalog: catalog}
}

// Create registers a plan and snapshots every catalog test case from the
// selected suites into fresh execution rows.
func (s *PlanService) Create(ctx context.Context, name string, suites, assignedUsers []string) (models.TestPlan, error) {
	if strings.TrimSpace(name) == "" || len(suites) == 0 || assignedUsers == nil {
		return models.TestPlan{}, validationf("test plan name, assigned users, and at least one test suite are required")
	}

	cases, err := s.catalog.BySuites(ctx, suites)
	if err != nil {
		return models.TestPlan{}, fmt.Errorf("loading catalog suites: %w", err)
	}

	rows := make([]models.PlanRow, len(cases))
	for i, tc := range cases {
		rows[i] = models.PlanRow{
			TestCaseID:          tc.TestCaseID,
			TestScenarioID:      tc.TestScenarioID,
			TestScenario:        tc.TestScenario,
			TestCaseDescription: tc.TestCaseDescription,
			Prerequisite:        tc.Prerequisite,
			StepsToReproduce:    tc.StepsToReproduce,
			ExpectedResult:      tc.ExpectedResult,
			TestResult:          initialTestResult,
			Status:              initialStatus,
			TestSuite:           tc.TestSuite,
		}
	}

	plan := models.TestPlan{
		Name:          name,
		TestSuites:    suites,
		AssignedUsers: assignedUsers,
		CreatedAt:     time.Now(),
	}
	return s.repo.Insert(ctx, plan, rows)
}

// List returns every plan registry entry.
func (s *PlanService) List(ctx context.Context) ([]models.TestPlan, error) {
	return s.repo.List(ctx)
}

// ListForUser returns the plans the given tester is assigned to.
func (s *PlanService) ListForUser(ctx context.Context, username string) ([]models.TestPlan, error) {
	return s.repo.ListForUser(ctx, username)
}

// Rows returns every execution row of the named plan.
func (s *PlanService) Rows(ctx context.Context, planName string) ([]models.PlanRow, error) {
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return nil, err
	}
	return s.repo.Rows(ctx, plan.ID)
}

// RowsForUser returns the plan's rows after checking the tester is assigned
// to it; ErrForbidden otherwise.
func (s *PlanService) RowsForUser(ctx context.Context, planName, username string) ([]models.PlanRow, error) {
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return nil, err
	}
	if !contains(plan.AssignedUsers, username) {
		return nil, ErrForbidden
	}
	return s.repo.Rows(ctx, plan.ID)
}

// Row fetches one execution row of the named plan.
func (s *PlanService) Row(ctx context.Context, planName, testcaseID string) (models.PlanRow, error) {
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return models.PlanRow{}, err
	}
	return s.repo.Row(ctx, plan.ID, testcaseID)
}

// UpdateRow applies a tester's result/status/comments edit to one row and
// records who executed it. Last write wins on concurrent edits.
func (s *PlanService) UpdateRow(ctx context.Context, planName, testcaseID string, upd models.RowUpdate, executedBy string) (models.PlanRow, error) {
	if upd.Empty() {
		return models.PlanRow{}, validationf("no fields provided to update")
	}
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return models.PlanRow{}, err
	}
	return s.repo.UpdateRow(ctx, plan.ID, testcaseID, upd, executedBy)
}

// Delete removes the plan registry entry and all its execution rows.
func (s *PlanService) Delete(ctx context.Context, planName string) error {
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, plan.ID)
}

// Summary builds the status/result distributions for a dashboard. With no
// plan name it falls back to the newest plan — for write users, the newest
// plan they are assigned to, and assignment is enforced either way.
func (s *PlanService) Summary(ctx context.Context, planName, role, username string) (models.PlanSummary, error) {
	var plan models.TestPlan
	var err error

	switch {
	case planName != "":
		plan, err = s.repo.FindByName(ctx, planName)
	case role == models.RoleWrite:
		plan, err = s.repo.LatestForUser(ctx, username)
	default:
		plan, err = s.repo.Latest(ctx)
	}
	if err != nil {
		return models.PlanSummary{}, err
	}

	if role == models.RoleWrite && !contains(plan.AssignedUsers, username) {
		return models.PlanSummary{}, ErrForbidden
	}

	statusData, err := s.repo.Distribution(ctx, plan.ID, "status")
	if err != nil {
		return models.PlanSummary{}, fmt.Errorf("status distribution: %w", err)
	}
	resultData, err := s.repo.Distribution(ctx, plan.ID, "test_result")
	if err != nil {
		return models.PlanSummary{}, fmt.Errorf("result distribution: %w", err)
	}

	return models.PlanSummary{
		TestPlanName: plan.Name,
		StatusData:   statusData,
		ResultData:   resultData,
	}, nil
}

// LinkBug attaches a bug to one execution row. The link always (re)sets the
// status to Open, overwriting any earlier link and its status, so a changed
// link target forces re-triage.
func (s *PlanService) LinkBug(ctx context.Context, planName, testcaseID string, bugID int) (models.PlanRow, error) {
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return models.PlanRow{}, err
	}
	return s.repo.LinkBug(ctx, plan.ID, testcaseID, bugID)
}

// SetBugStatus moves a bug link to a new status. The enum is flat: any
// status may move to any other.
func (s *PlanService) SetBugStatus(ctx context.Context, bugID int, testcaseID, planName, status string) error {
	if !models.ValidBugStatus(status) {
		return validationf("invalid status value")
	}
	plan, err := s.repo.FindByName(ctx, planName)
	if err != nil {
		return err
	}
	return s.repo.SetBugStatus(ctx, plan.ID, testcaseID, bugID, status)
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
