package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// BugMongo implements service.BugRepository. It owns the "bugs" collection
// and reads "plan_rows"/"plans" for the history and detail joins.
type BugMongo struct {
	db    *mongo.Database
	bugs  *mongo.Collection
	rows  *mongo.Collection
	plans *mongo.Collection
}

// NewBugRepository wires the collections.
func NewBugRepository(db *mongo.Database) *BugMongo {
	return &BugMongo{
		db:    db,
		bugs:  db.Collection("bugs"),
		rows:  db.Collection("plan_rows"),
		plans: db.Collection("plans"),
	}
}

// Insert stores the bug with the next registry id.
func (r *BugMongo) Insert(ctx context.Context, bug models.Bug) (models.Bug, error) {
	id, err := nextSequence(ctx, r.db, "bug_id")
	if err != nil {
		return models.Bug{}, err
	}
	bug.ID = id

	if _, err := r.bugs.InsertOne(ctx, bug); err != nil {
		return models.Bug{}, fmt.Errorf("inserting bug: %w", err)
	}
	return bug, nil
}

// Embedded returns every bug carrying an embedding, in id order so the
// ranker's tie-breaking is deterministic.
func (r *BugMongo) Embedded(ctx context.Context) ([]models.Bug, error) {
	cur, err := r.bugs.Find(ctx,
		bson.M{"embedding": bson.M{"$exists": true, "$ne": nil}},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("loading embedded bugs: %w", err)
	}
	var bugs []models.Bug
	if err := cur.All(ctx, &bugs); err != nil {
		return nil, fmt.Errorf("decoding bugs: %w", err)
	}
	return bugs, nil
}

// History joins bugs to every execution row that links them, ordered by bug
// id descending, then plan name, then test case id. The join runs in Go:
// three indexed reads over collections this small beat a cross-collection
// $lookup pipeline for clarity.
func (r *BugMongo) History(ctx context.Context) ([]models.BugHistoryEntry, error) {
	cur, err := r.rows.Find(ctx, bson.M{"bug_id": bson.M{"$exists": true, "$ne": nil}})
	if err != nil {
		return nil, fmt.Errorf("loading linked rows: %w", err)
	}
	var rows []models.PlanRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding linked rows: %w", err)
	}
	if len(rows) == 0 {
		return []models.BugHistoryEntry{}, nil
	}

	planNames, err := r.planNames(ctx, rows)
	if err != nil {
		return nil, err
	}
	bugByID, err := r.bugsByID(ctx, rows)
	if err != nil {
		return nil, err
	}

	entries := make([]models.BugHistoryEntry, 0, len(rows))
	for _, row := range rows {
		bug, ok := bugByID[*row.BugID]
		if !ok {
			continue // dangling link, nothing to report
		}
		entries = append(entries, models.BugHistoryEntry{
			BugID:        bug.ID,
			Title:        bug.Title,
			Severity:     bug.Severity,
			TestCaseID:   row.TestCaseID,
			TestPlanName: planNames[row.PlanID],
			BugStatus:    row.BugStatus,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BugID != entries[j].BugID {
			return entries[i].BugID > entries[j].BugID
		}
		if entries[i].TestPlanName != entries[j].TestPlanName {
			return entries[i].TestPlanName < entries[j].TestPlanName
		}
		return entries[i].TestCaseID < entries[j].TestCaseID
	})
	return entries, nil
}

// Detail resolves one (bug, test case, plan) triple. The plan name is
// matched case-insensitively.
func (r *BugMongo) Detail(ctx context.Context, bugID int, testcaseID, planName string) (models.BugDetail, error) {
	var bug models.Bug
	err := r.bugs.FindOne(ctx, bson.M{"id": bugID}).Decode(&bug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BugDetail{}, fmt.Errorf("bug %d: %w", bugID, service.ErrNotFound)
	}
	if err != nil {
		return models.BugDetail{}, fmt.Errorf("finding bug: %w", err)
	}

	var plan models.TestPlan
	err = r.plans.FindOne(ctx, bson.M{
		"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(planName) + "$", Options: "i"},
	}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BugDetail{}, fmt.Errorf("test plan %q: %w", planName, service.ErrNotFound)
	}
	if err != nil {
		return models.BugDetail{}, fmt.Errorf("finding plan: %w", err)
	}

	var row models.PlanRow
	err = r.rows.FindOne(ctx, bson.M{
		"plan_id":     plan.ID,
		"testcase_id": testcaseID,
		"bug_id":      bugID,
	}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BugDetail{}, fmt.Errorf("bug %d not linked to test case %s in plan %q: %w",
			bugID, testcaseID, planName, service.ErrNotFound)
	}
	if err != nil {
		return models.BugDetail{}, fmt.Errorf("finding link row: %w", err)
	}

	return models.BugDetail{
		BugID:        bug.ID,
		Title:        bug.Title,
		Severity:     bug.Severity,
		Description:  bug.Description,
		TestCaseID:   row.TestCaseID,
		TestPlanName: plan.Name,
		Status:       row.BugStatus,
	}, nil
}

func (r *BugMongo) planNames(ctx context.Context, rows []models.PlanRow) (map[primitive.ObjectID]string, error) {
	ids := make([]primitive.ObjectID, 0, len(rows))
	seen := make(map[primitive.ObjectID]bool, len(rows))
	for _, row := range rows {
		if !seen[row.PlanID] {
			seen[row.PlanID] = true
			ids = append(ids, row.PlanID)
		}
	}

	cur, err := r.plans.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("loading plan names: %w", err)
	}
	var plans []models.TestPlan
	if err := cur.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("decoding plans: %w", err)
	}

	names := make(map[primitive.ObjectID]string, len(plans))
	for _, p := range plans {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (r *BugMongo) bugsByID(ctx context.Context, rows []models.PlanRow) (map[int]models.Bug, error) {
	ids := make([]int, 0, len(rows))
	seen := make(map[int]bool, len(rows))
	for _, row := range rows {
		if row.BugID != nil && !seen[*row.BugID] {
			seen[*row.BugID] = true
			ids = append(ids, *row.BugID)
		}
	}

	cur, err := r.bugs.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("loading bugs: %w", err)
	}
	var bugs []models.Bug
	if err := cur.All(ctx, &bugs); err != nil {
		return nil, fmt.Errorf("decoding bugs: %w", err)
	}

	byID := make(map[int]models.Bug, len(bugs))
	for _, b := range bugs {
		byID[b.ID] = b
	}
	return byID, nil
}
