package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/similarity"
)

// defaultTopK is how many candidate duplicates a search returns when the
// caller does not ask for a specific count.
const defaultTopK = 3

// ---- Collaborator contracts ------------------------------------------------

// Embedder turns a bug title into its embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BugRepository persists bug records and serves the joins behind the
// history and detail views.
type BugRepository interface {
	// Insert stores the bug and returns it with its assigned id.
	Insert(ctx context.Context, bug models.Bug) (models.Bug, error)
	// Embedded returns every bug that has a stored embedding, in insertion
	// order. Bugs without one are invisible to similarity search.
	Embedded(ctx context.Context) ([]models.Bug, error)
	// History joins bugs to the execution rows that link them, ordered by
	// bug id descending, then plan name, then test case id.
	History(ctx context.Context) ([]models.BugHistoryEntry, error)
	// Detail resolves one (bug, test case, plan) triple.
	Detail(ctx context.Context, bugID int, testcaseID, planName string) (models.BugDetail, error)
}

// ---- Service ---------------------------------------------------------------

// BugService owns the deduplicated bug registry: creating records and
// ranking existing ones against a candidate title so a tester sees likely
// duplicates before filing a new bug.
type BugService struct {
	repo     BugRepository
	embedder Embedder
}

// NewBugService wires the repository and embedder.
func NewBugService(repo BugRepository, embedder Embedder) *BugService {
	return &BugService{repo: repo, embedder: embedder}
}

// Create validates and stores a new bug. The title embedding is computed
// here so freshly filed bugs show up in later searches; if the model is
// down the bug is stored without one rather than blocking the tester, and
// the gap is logged.
func (s *BugService) Create(ctx context.Context, title, description, severity string) (models.Bug, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || strings.TrimSpace(severity) == "" {
		return models.Bug{}, validationf("title, description, and severity are required")
	}
	if !models.ValidSeverity(severity) {
		return models.Bug{}, validationf("severity must be one of low, medium, high, critical")
	}

	vec, err := s.embedder.Embed(ctx, title)
	if err != nil {
		log.Printf("bug create: embedding %q failed, storing without one: %v", title, err)
		vec = nil
	}

	bug, err := s.repo.Insert(ctx, models.Bug{
		Title:       title,
		Description: description,
		Severity:    severity,
		Embedding:   vec,
	})
	if err != nil {
		return models.Bug{}, fmt.Errorf("inserting bug: %w", err)
	}
	return bug, nil
}

// Search embeds the candidate title and returns the top-k most similar
// stored bugs, best first. An empty corpus yields an empty list, not an
// error. Validation runs before any inference so invalid input never costs
// an embedding call.
func (s *BugService) Search(ctx context.Context, title string, k int) ([]models.BugMatch, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationf("title is required for search")
	}
	if k <= 0 {
		k = defaultTopK
	}

	query, err := s.embedder.Embed(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("embedding search title: %w", err)
	}

	bugs, err := s.repo.Embedded(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading bug corpus: %w", err)
	}
	if len(bugs) == 0 {
		return []models.BugMatch{}, nil
	}

	corpus := make([]similarity.Vector, len(bugs))
	byID := make(map[int]models.Bug, len(bugs))
	for i, b := range bugs {
		corpus[i] = similarity.Vector{ID: b.ID, Values: b.Embedding}
		byID[b.ID] = b
	}

	ranked, err := similarity.Rank(query, corpus, k)
	if err != nil {
		return nil, fmt.Errorf("ranking bug corpus: %w", err)
	}

	matches := make([]models.BugMatch, 0, len(ranked))
	for _, r := range ranked {
		matches = append(matches, models.BugMatch{Bug: byID[r.ID], Similarity: r.Score})
	}
	return matches, nil
}

// History returns the read-only bug history report.
func (s *BugService) History(ctx context.Context) ([]models.BugHistoryEntry, error) {
	entries, err := s.repo.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading bug history: %w", err)
	}
	return entries, nil
}

// Detail fetches one bug joined to a specific execution row.
func (s *BugService) Detail(ctx context.Context, bugID int, testcaseID, planName string) (models.BugDetail, error) {
	if testcaseID == "" || planName == "" {
		return models.BugDetail{}, validationf("testcase_id and test_plan_name are required")
	}
	return s.repo.Detail(ctx, bugID, testcaseID, planName)
}
