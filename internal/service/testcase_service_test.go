package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// memCatalogRepo is an in-memory CatalogRepository.
type memCatalogRepo struct {
	cases  []models.TestCase
	nextSN int
	nextTC int
}

func (r *memCatalogRepo) All(ctx context.Context) ([]models.TestCase, error) { return r.cases, nil }

func (r *memCatalogRepo) Suites(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, tc := range r.cases {
		if tc.TestSuite != "" && !seen[tc.TestSuite] {
			seen[tc.TestSuite] = true
			out = append(out, tc.TestSuite)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.cases)), nil
}

func (r *memCatalogRepo) BySuites(ctx context.Context, suites []string) ([]models.TestCase, error) {
	var out []models.TestCase
	for _, tc := range r.cases {
		if contains(suites, tc.TestSuite) {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) ScenarioIDsBySuite(ctx context.Context, suites []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, s := range suites {
		out[s] = []string{}
	}
	for _, tc := range r.cases {
		if contains(suites, tc.TestSuite) {
			out[tc.TestSuite] = append(out[tc.TestSuite], tc.TestScenarioID)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) HasScenario(ctx context.Context, scenario, suite string) (bool, error) {
	for _, tc := range r.cases {
		if strings.EqualFold(strings.TrimSpace(tc.TestScenario), strings.TrimSpace(scenario)) &&
			strings.EqualFold(strings.TrimSpace(tc.TestSuite), strings.TrimSpace(suite)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCatalogRepo) LastScenarioID(ctx context.Context, prefix string) (string, error) {
	last := ""
	for _, tc := range r.cases {
		if strings.HasPrefix(tc.TestScenarioID, prefix) && tc.TestScenarioID > last {
			last = tc.TestScenarioID
		}
	}
	return last, nil
}

func (r *memCatalogRepo) NextIDs(ctx context.Context) (int, int, error) {
	r.nextSN++
	r.nextTC++
	return r.nextSN, r.nextTC, nil
}

func (r *memCatalogRepo) ReserveIDs(ctx context.Context, n int) (int, int, error) {
	sn, tc := r.nextSN+1, r.nextTC+1
	r.nextSN += n
	r.nextTC += n
	return sn, tc, nil
}

func (r *memCatalogRepo) Insert(ctx context.Context, tc models.TestCase) (models.TestCase, error) {
	r.cases = append(r.cases, tc)
	return tc, nil
}

func (r *memCatalogRepo) InsertManySkipDup(ctx context.Context, cases []models.TestCase) (int, error) {
	seen := map[string]bool{}
	for _, tc := range r.cases {
		seen[tc.TestScenarioID] = true
	}
	n := 0
	for _, tc := range cases {
		if tc.TestScenarioID != "" && seen[tc.TestScenarioID] {
			continue
		}
		seen[tc.TestScenarioID] = true
		r.cases = append(r.cases, tc)
		n++
	}
	return n, nil
}

// memPendingRepo is an in-memory PendingRepository.
type memPendingRepo struct {
	requests []models.PendingRequest
	nextID   int
}

func (r *memPendingRepo) Insert(ctx context.Context, pr models.PendingRequest) (models.PendingRequest, error) {
	r.nextID++
	pr.TestCaseID = r.nextID
	r.requests = append(r.requests, pr)
	return pr, nil
}

func (r *memPendingRepo) HasScenario(ctx context.Context, scenario, suite string) (bool, error) {
	for _, pr := range r.requests {
		if strings.EqualFold(strings.TrimSpace(pr.TestScenario), strings.TrimSpace(scenario)) &&
			strings.EqualFold(strings.TrimSpace(pr.TestSuite), strings.TrimSpace(suite)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPendingRepo) All(ctx context.Context) ([]models.PendingRequest, error) {
	return r.requests, nil
}

func (r *memPendingRepo) ByID(ctx context.Context, id int) (models.PendingRequest, error) {
	for _, pr := range r.requests {
		if pr.TestCaseID == id {
			return pr, nil
		}
	}
	return models.PendingRequest{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
}

func (r *memPendingRepo) ForUser(ctx context.Context, username string) ([]models.PendingRequest, error) {
	var out []models.PendingRequest
	for _, pr := range r.requests {
		if pr.SubmittedBy == username {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (r *memPendingRepo) Update(ctx context.Context, id int, upd models.RowUpdate) (models.PendingRequest, error) {
	for i := range r.requests {
		if r.requests[i].TestCaseID != id {
			continue
		}
		if upd.TestResult != nil {
			r.requests[i].TestResult = *upd.TestResult
		}
		if upd.Status != nil {
			r.requests[i].Status = *upd.Status
		}
		if upd.ActualResult != nil {
			r.requests[i].ActualResult = *upd.ActualResult
		}
		if upd.ExpectedResult != nil {
			r.requests[i].ExpectedResult = *upd.ExpectedResult
		}
		if upd.Comments != nil {
			r.requests[i].Comments = *upd.Comments
		}
		return r.requests[i], nil
	}
	return models.PendingRequest{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
}

func (r *memPendingRepo) Transition(ctx context.Context, id int, from, to string) (models.PendingRequest, error) {
	for i := range r.requests {
		if r.requests[i].TestCaseID == id && r.requests[i].RequestStatus == from {
			r.requests[i].RequestStatus = to
			return r.requests[i], nil
		}
	}
	return models.PendingRequest{}, fmt.Errorf("request %d in state %s: %w", id, from, ErrNotFound)
}

func newTestCaseService() (*TestCaseService, *memCatalogRepo, *memPendingRepo) {
	catalog := &memCatalogRepo{}
	pending := &memPendingRepo{}
	return NewTestCaseService(catalog, pending), catalog, pending
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	svc, _, _ := newTestCaseService()

	first, err := svc.Create(context.Background(), models.TestCase{
		TestScenario: "Valid login", TestSuite: "Login",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.TestScenarioID != "TS_Login_001" {
		t.Errorf("scenario id = %q, want TS_Login_001", first.TestScenarioID)
	}
	if first.TestCaseID != "TC_001" || first.SNo != 1 {
		t.Errorf("ids = %q/%d, want TC_001/1", first.TestCaseID, first.SNo)
	}
	if first.TestResult != "not-tested" || first.Status != "new" {
		t.Errorf("defaults = %q/%q", first.TestResult, first.Status)
	}

	second, err := svc.Create(context.Background(), models.TestCase{
		TestScenario: "Invalid login", TestSuite: "Login",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.TestScenarioID != "TS_Login_002" || second.TestCaseID != "TC_002" {
		t.Errorf("second ids = %q/%q", second.TestScenarioID, second.TestCaseID)
	}

	// A new suite starts its own scenario sequence while the case counter
	// keeps running.
	third, err := svc.Create(context.Background(), models.TestCase{
		TestScenario: "Add to cart", TestSuite: "cart",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if third.TestScenarioID != "TS_Cart_001" || third.TestCaseID != "TC_003" {
		t.Errorf("third ids = %q/%q", third.TestScenarioID, third.TestCaseID)
	}
}

func TestCreateRejectsDuplicateScenario(t *testing.T) {
	svc, _, _ := newTestCaseService()
	if _, err := svc.Create(context.Background(), models.TestCase{
		TestScenario: "Valid login", TestSuite: "Login",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Case and surrounding whitespace do not make it a different scenario.
	_, err := svc.Create(context.Background(), models.TestCase{
		TestScenario: "  valid LOGIN ", TestSuite: "login",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("got %v, want ErrDuplicate", err)
	}
}

func TestApprovePromotesRequest(t *testing.T) {
	svc, catalog, _ := newTestCaseService()

	pr, err := svc.Submit(context.Background(), models.PendingRequest{
		TestScenario: "Checkout flow", TestSuite: "Cart", SubmittedBy: "alex",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if pr.RequestStatus != models.RequestPending {
		t.Fatalf("submitted status = %q", pr.RequestStatus)
	}

	if err := svc.Approve(context.Background(), pr.TestCaseID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(catalog.cases) != 1 || catalog.cases[0].TestScenario != "Checkout flow" {
		t.Fatalf("catalog after approve: %+v", catalog.cases)
	}
	got, err := svc.PendingByID(context.Background(), pr.TestCaseID)
	if err != nil {
		t.Fatalf("PendingByID: %v", err)
	}
	if got.RequestStatus != models.RequestApproved {
		t.Errorf("request status = %q, want approved", got.RequestStatus)
	}

	// A second approve of the same request must not duplicate the case.
	if err := svc.Approve(context.Background(), pr.TestCaseID); !errors.Is(err, ErrNotFound) {
		t.Errorf("re-approve: got %v, want ErrNotFound", err)
	}
	if len(catalog.cases) != 1 {
		t.Errorf("catalog has %d cases after re-approve", len(catalog.cases))
	}
}

func TestRejectedRequestStaysEditable(t *testing.T) {
	svc, catalog, _ := newTestCaseService()
	pr, err := svc.Submit(context.Background(), models.PendingRequest{
		TestScenario: "Checkout flow", TestSuite: "Cart", SubmittedBy: "alex",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Reject(context.Background(), pr.TestCaseID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if len(catalog.cases) != 0 {
		t.Errorf("rejected request reached the catalog")
	}

	comment := "please add expected result"
	if _, err := svc.UpdateUserRequest(context.Background(), pr.TestCaseID, "alex",
		models.RowUpdate{Comments: &comment}); err != nil {
		t.Errorf("rejected request should stay editable: %v", err)
	}
}

func TestUserRequestOwnership(t *testing.T) {
	svc, _, _ := newTestCaseService()
	pr, err := svc.Submit(context.Background(), models.PendingRequest{
		TestScenario: "Checkout flow", TestSuite: "Cart", SubmittedBy: "alex",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.UserRequestByID(context.Background(), pr.TestCaseID, "sam"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign request visible: %v", err)
	}

	if err := svc.Approve(context.Background(), pr.TestCaseID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	comment := "tweak"
	_, err = svc.UpdateUserRequest(context.Background(), pr.TestCaseID, "alex",
		models.RowUpdate{Comments: &comment})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("approved request editable: %v", err)
	}
}

func TestImportAssignsBlockOfIDs(t *testing.T) {
	svc, catalog, _ := newTestCaseService()
	if _, err := svc.Create(context.Background(), models.TestCase{
		TestScenario: "Existing", TestSuite: "Login",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := svc.Import(context.Background(), []models.TestCase{
		{TestScenarioID: "TS_Cart_001", TestScenario: "Add", TestSuite: "Cart"},
		{TestScenarioID: "TS_Cart_002", TestScenario: "Remove", TestSuite: "Cart"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d, want 2", n)
	}

	imported := catalog.cases[1:]
	if imported[0].TestCaseID != "TC_002" || imported[1].TestCaseID != "TC_003" {
		t.Errorf("imported ids = %q, %q", imported[0].TestCaseID, imported[1].TestCaseID)
	}
	if imported[0].SNo != 2 || imported[1].SNo != 3 {
		t.Errorf("imported serials = %d, %d", imported[0].SNo, imported[1].SNo)
	}
	if imported[0].TestResult != "not-tested" || imported[0].Status != "new" {
		t.Errorf("imported defaults = %q/%q", imported[0].TestResult, imported[0].Status)
	}
}

func TestImportSkipsKnownScenarios(t *testing.T) {
	svc, _, _ := newTestCaseService()
	if _, err := svc.Import(context.Background(), []models.TestCase{
		{TestScenarioID: "TS_Cart_001", TestScenario: "Add", TestSuite: "Cart"},
	}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	n, err := svc.Import(context.Background(), []models.TestCase{
		{TestScenarioID: "TS_Cart_001", TestScenario: "Add again", TestSuite: "Cart"},
		{TestScenarioID: "TS_Cart_002", TestScenario: "Remove", TestSuite: "Cart"},
	})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted %d, want 1 (duplicate scenario skipped)", n)
	}
}
