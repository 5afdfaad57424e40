package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// CatalogRepository persists the master catalog of test cases.
type CatalogRepository interface {
	All(ctx context.Context) ([]models.TestCase, error)
	Suites(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	BySuites(ctx context.Context, suites []string) ([]models.TestCase, error)
	ScenarioIDsBySuite(ctx context.Context, suites []string) (map[string][]string, error)
	// HasScenario matches case-insensitively on trimmed scenario + suite.
	HasScenario(ctx context.Context, scenario, suite string) (bool, error)
	// LastScenarioID returns the highest test_scenario_id with the given
	// prefix, or "" when none exists.
	LastScenarioID(ctx context.Context, prefix string) (string, error)
	// NextIDs reserves the next serial number and numeric test case id.
	NextIDs(ctx context.Context) (sNo, tcNum int, err error)
	// ReserveIDs reserves n consecutive serial numbers and test case ids,
	// returning the first of each.
	ReserveIDs(ctx context.Context, n int) (firstSNo, firstTC int, err error)
	Insert(ctx context.Context, tc models.TestCase) (models.TestCase, error)
	// InsertManySkipDup inserts the batch, silently skipping rows whose
	// test_scenario_id already exists, and returns how many landed.
	InsertManySkipDup(ctx context.Context, cases []models.TestCase) (int, error)
}

// PendingRepository persists write users' catalog submissions awaiting
// admin review.
type PendingRepository interface {
	Insert(ctx context.Context, pr models.PendingRequest) (models.PendingRequest, error)
	HasScenario(ctx context.Context, scenario, suite string) (bool, error)
	All(ctx context.Context) ([]models.PendingRequest, error)
	ByID(ctx context.Context, id int) (models.PendingRequest, error)
	ForUser(ctx context.Context, username string) ([]models.PendingRequest, error)
	Update(ctx context.Context, id int, upd models.RowUpdate) (models.PendingRequest, error)
	// Transition flips request_status from one value to another; ErrNotFound
	// when the request is missing or not in the expected state.
	Transition(ctx context.Context, id int, from, to string) (models.PendingRequest, error)
}

// TestCaseService owns the master catalog and the pending-request approval
// workflow feeding it.
type TestCaseService struct {
	catalog CatalogRepository
	pending PendingRepository
}

// NewTestCaseService wires the catalog and pending repositories.
func NewTestCaseService(catalog CatalogRepository, pending PendingRepository) *TestCaseService {
	return &TestCaseService{catalog: catalog, pending: pending}
}

// List returns the whole master catalog.
func (s *TestCaseService) List(ctx context.Context) ([]models.TestCase, error) {
	return s.catalog.All(ctx)
}

// Suites returns the distinct suite names in the catalog.
func (s *TestCaseService) Suites(ctx context.Context) ([]string, error) {
	return s.catalog.Suites(ctx)
}

// Count returns how many catalog rows exist.
func (s *TestCaseService) Count(ctx context.Context) (int64, error) {
	return s.catalog.Count(ctx)
}

// ScenarioIDsBySuite groups catalog scenario ids per suite for the plan
// creation dropdown.
func (s *TestCaseService) ScenarioIDsBySuite(ctx context.Context, suites []string) (map[string][]string, error) {
	if len(suites) == 0 {
		return nil, validationf("missing suites parameter")
	}
	return s.catalog.ScenarioIDsBySuite(ctx, suites)
}

// Create adds a test case directly to the catalog (admin path). Duplicate
// scenario+suite pairs are rejected with ErrDuplicate.
func (s *TestCaseService) Create(ctx context.Context, tc models.TestCase) (models.TestCase, error) {
	if strings.TrimSpace(tc.TestScenario) == "" || strings.TrimSpace(tc.TestSuite) == "" {
		return models.TestCase{}, validationf("test_scenario and test_suite are required")
	}

	dup, err := s.catalog.HasScenario(ctx, tc.TestScenario, tc.TestSuite)
	if err != nil {
		return models.TestCase{}, fmt.Errorf("duplicate check: %w", err)
	}
	if dup {
		return models.TestCase{}, fmt.Errorf("test case %w for this suite", ErrDuplicate)
	}

	scenarioID, err := s.nextScenarioID(ctx, tc.TestSuite)
	if err != nil {
		return models.TestCase{}, err
	}
	sNo, tcNum, err := s.catalog.NextIDs(ctx)
	if err != nil {
		return models.TestCase{}, fmt.Errorf("reserving ids: %w", err)
	}

	tc.TestScenarioID = scenarioID
	tc.SNo = sNo
	tc.TestCaseID = fmt.Sprintf("TC_%03d", tcNum)
	if tc.TestResult == "" {
		tc.TestResult = initialTestResult
	}
	if tc.Status == "" {
		tc.Status = initialStatus
	}
	return s.catalog.Insert(ctx, tc)
}

// nextScenarioID generates TS_<Suite>_NNN, continuing from the highest
// existing id within the suite.
func (s *TestCaseService) nextScenarioID(ctx context.Context, suite string) (string, error) {
	formatted := strings.ToUpper(suite[:1]) + strings.ToLower(suite[1:])
	prefix := "TS_" + formatted

	last, err := s.catalog.LastScenarioID(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("looking up last scenario id: %w", err)
	}
	next := 1
	if last != "" {
		if i := strings.LastIndex(last, "_"); i >= 0 {
			var n int
			if _, err := fmt.Sscanf(last[i+1:], "%d", &n); err == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("%s_%03d", prefix, next), nil
}

// Import bulk-loads parsed spreadsheet rows into the catalog. Ids from the
// file are ignored; a block of fresh serial numbers and test case ids is
// reserved up front and rows with an already known scenario id are skipped.
// Returns how many rows were inserted.
func (s *TestCaseService) Import(ctx context.Context, cases []models.TestCase) (int, error) {
	if len(cases) == 0 {
		return 0, validationf("no rows to import")
	}

	sNo, tcNum, err := s.catalog.ReserveIDs(ctx, len(cases))
	if err != nil {
		return 0, fmt.Errorf("reserving ids: %w", err)
	}
	for i := range cases {
		cases[i].SNo = sNo + i
		cases[i].TestCaseID = fmt.Sprintf("TC_%03d", tcNum+i)
		if cases[i].TestResult == "" {
			cases[i].TestResult = initialTestResult
		}
		if cases[i].Status == "" {
			cases[i].Status = initialStatus
		}
	}
	return s.catalog.InsertManySkipDup(ctx, cases)
}

// Submit queues a write user's test case for admin review. Duplicate
// pending submissions are rejected with ErrDuplicate.
func (s *TestCaseService) Submit(ctx context.Context, pr models.PendingRequest) (models.PendingRequest, error) {
	if strings.TrimSpace(pr.TestScenario) == "" || strings.TrimSpace(pr.TestSuite) == "" {
		return models.PendingRequest{}, validationf("test_scenario and test_suite are required")
	}

	dup, err := s.pending.HasScenario(ctx, pr.TestScenario, pr.TestSuite)
	if err != nil {
		return models.PendingRequest{}, fmt.Errorf("duplicate check: %w", err)
	}
	if dup {
		return models.PendingRequest{}, fmt.Errorf("test case %w: already submitted for review", ErrDuplicate)
	}

	pr.SubmittedAt = time.Now()
	pr.RequestStatus = models.RequestPending
	return s.pending.Insert(ctx, pr)
}

// PendingAll lists every pending request for the admin review queue.
func (s *TestCaseService) PendingAll(ctx context.Context) ([]models.PendingRequest, error) {
	return s.pending.All(ctx)
}

// PendingByID fetches one request, regardless of owner (admin view).
func (s *TestCaseService) PendingByID(ctx context.Context, id int) (models.PendingRequest, error) {
	return s.pending.ByID(ctx, id)
}

// UpdatePending lets an admin touch up a queued request before approval.
func (s *TestCaseService) UpdatePending(ctx context.Context, id int, upd models.RowUpdate) (models.PendingRequest, error) {
	if upd.Empty() {
		return models.PendingRequest{}, validationf("no fields to update")
	}
	return s.pending.Update(ctx, id, upd)
}

// Approve copies a pending request into the master catalog (with freshly
// generated ids) and marks the request approved.
func (s *TestCaseService) Approve(ctx context.Context, id int) error {
	pr, err := s.pending.ByID(ctx, id)
	if err != nil {
		return err
	}
	if pr.RequestStatus != models.RequestPending {
		return fmt.Errorf("request already processed: %w", ErrNotFound)
	}

	_, err = s.Create(ctx, models.TestCase{
		TestScenario:        pr.TestScenario,
		TestCaseDescription: pr.TestCaseDescription,
		Prerequisite:        pr.Prerequisite,
		StepsToReproduce:    pr.StepsToReproduce,
		ExpectedResult:      pr.ExpectedResult,
		ActualResult:        pr.ActualResult,
		TestResult:          pr.TestResult,
		Status:              pr.Status,
		Comments:            pr.Comments,
		TestSuite:           pr.TestSuite,
	})
	if err != nil {
		return fmt.Errorf("promoting request %d: %w", id, err)
	}

	_, err = s.pending.Transition(ctx, id, models.RequestPending, models.RequestApproved)
	return err
}

// Reject marks a pending request rejected.
func (s *TestCaseService) Reject(ctx context.Context, id int) error {
	_, err := s.pending.Transition(ctx, id, models.RequestPending, models.RequestRejected)
	return err
}

// UserRequests lists the requests one write user has submitted.
func (s *TestCaseService) UserRequests(ctx context.Context, username string) ([]models.PendingRequest, error) {
	return s.pending.ForUser(ctx, username)
}

// UserRequestByID fetches one request, restricted to its submitter.
func (s *TestCaseService) UserRequestByID(ctx context.Context, id int, username string) (models.PendingRequest, error) {
	pr, err := s.pending.ByID(ctx, id)
	if err != nil {
		return models.PendingRequest{}, err
	}
	if pr.SubmittedBy != username {
		return models.PendingRequest{}, ErrNotFound
	}
	return pr, nil
}

// UpdateUserRequest lets a write user edit their own request while it is
// still reviewable; approved requests are frozen.
func (s *TestCaseService) UpdateUserRequest(ctx context.Context, id int, username string, upd models.RowUpdate) (models.PendingRequest, error) {
	pr, err := s.pending.ByID(ctx, id)
	if err != nil {
		return models.PendingRequest{}, err
	}
	if pr.SubmittedBy != username {
		return models.PendingRequest{}, ErrNotFound
	}
	if pr.RequestStatus == models.RequestApproved {
		return models.PendingRequest{}, fmt.Errorf("cannot modify an approved request: %w", ErrForbidden)
	}
	if upd.Empty() {
		return models.PendingRequest{}, validationf("no valid fields provided for update")
	}
	return s.pending.Update(ctx, id, upd)
}
