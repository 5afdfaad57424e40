package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Johaan1835/TestMatrix/internal/models"
)

// CatalogMongo implements service.CatalogRepository on the "testcases"
// collection (the master catalog).
type CatalogMongo struct {
	db  *mongo.Database
	col *mongo.Collection
}

// NewCatalogRepository wires the collection.
func NewCatalogRepository(db *mongo.Database) *CatalogMongo {
	return &CatalogMongo{db: db, col: db.Collection("testcases")}
}

// All returns the whole catalog in serial-number order.
func (r *CatalogMongo) All(ctx context.Context) ([]models.TestCase, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "s_no", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing test cases: %w", err)
	}
	var cases []models.TestCase
	if err := cur.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("decoding test cases: %w", err)
	}
	return cases, nil
}

// Suites returns the distinct non-empty suite names.
func (r *CatalogMongo) Suites(ctx context.Context) ([]string, error) {
	raw, err := r.col.Distinct(ctx, "test_suite", bson.M{"test_suite": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, fmt.Errorf("listing suites: %w", err)
	}
	suites := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			suites = append(suites, s)
		}
	}
	return suites, nil
}

// Count returns the catalog size.
func (r *CatalogMongo) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting test cases: %w", err)
	}
	return n, nil
}

// BySuites returns every catalog row belonging to any of the given suites.
func (r *CatalogMongo) BySuites(ctx context.Context, suites []string) ([]models.TestCase, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"test_suite": bson.M{"$in": suites}},
		options.Find().SetSort(bson.D{{Key: "test_scenario_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("loading suites: %w", err)
	}
	var cases []models.TestCase
	if err := cur.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("decoding suites: %w", err)
	}
	return cases, nil
}

// ScenarioIDsBySuite groups scenario ids per requested suite. Suites with
// no rows map to an empty slice rather than being dropped.
func (r *CatalogMongo) ScenarioIDsBySuite(ctx context.Context, suites []string) (map[string][]string, error) {
	cases, err := r.BySuites(ctx, suites)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(suites))
	for _, suite := range suites {
		result[suite] = []string{}
	}
	for _, tc := range cases {
		result[tc.TestSuite] = append(result[tc.TestSuite], tc.TestScenarioID)
	}
	return result, nil
}

// HasScenario reports whether a scenario already exists in a suite, matched
// case-insensitively on the trimmed values.
func (r *CatalogMongo) HasScenario(ctx context.Context, scenario, suite string) (bool, error) {
	return hasScenario(ctx, r.col, scenario, suite)
}

// LastScenarioID returns the highest scenario id carrying the prefix, or ""
// when the suite has none. Ids are zero-padded, so lexicographic order is
// numeric order.
func (r *CatalogMongo) LastScenarioID(ctx context.Context, prefix string) (string, error) {
	var doc struct {
		TestScenarioID string `bson:"test_scenario_id"`
	}
	err := r.col.FindOne(ctx,
		bson.M{"test_scenario_id": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix) + "_", Options: ""}},
		options.FindOne().SetSort(bson.D{{Key: "test_scenario_id", Value: -1}}),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("finding last scenario id: %w", err)
	}
	return doc.TestScenarioID, nil
}

// NextIDs reserves the next serial number and test case number.
func (r *CatalogMongo) NextIDs(ctx context.Context) (int, int, error) {
	sNo, err := nextSequence(ctx, r.db, "catalog_s_no")
	if err != nil {
		return 0, 0, err
	}
	tcNum, err := nextSequence(ctx, r.db, "catalog_tc")
	if err != nil {
		return 0, 0, err
	}
	return sNo, tcNum, nil
}

// ReserveIDs reserves n consecutive serial numbers and test case numbers
// for a bulk import, returning the first of each block.
func (r *CatalogMongo) ReserveIDs(ctx context.Context, n int) (int, int, error) {
	sNo, err := nextSequenceN(ctx, r.db, "catalog_s_no", n)
	if err != nil {
		return 0, 0, err
	}
	tcNum, err := nextSequenceN(ctx, r.db, "catalog_tc", n)
	if err != nil {
		return 0, 0, err
	}
	return sNo, tcNum, nil
}

// Insert stores one catalog row.
func (r *CatalogMongo) Insert(ctx context.Context, tc models.TestCase) (models.TestCase, error) {
	if _, err := r.col.InsertOne(ctx, tc); err != nil {
		return models.TestCase{}, fmt.Errorf("inserting test case: %w", err)
	}
	return tc, nil
}

// InsertManySkipDup bulk-inserts catalog rows, skipping any that collide
// with the unique scenario-id index, and reports how many landed.
func (r *CatalogMongo) InsertManySkipDup(ctx context.Context, cases []models.TestCase) (int, error) {
	docs := make([]interface{}, len(cases))
	for i, tc := range cases {
		docs[i] = tc
	}

	// Unordered so one duplicate does not abort the rest of the batch.
	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return inserted, fmt.Errorf("bulk inserting test cases: %w", err)
	}
	return inserted, nil
}

// hasScenario is shared with the pending-requests repository, which runs
// the same duplicate check against its own collection.
func hasScenario(ctx context.Context, col *mongo.Collection, scenario, suite string) (bool, error) {
	filter := bson.M{
		"test_scenario": ciExact(scenario),
		"test_suite":    ciExact(suite),
	}
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("checking for duplicate scenario: %w", err)
	}
	return n > 0, nil
}

// ciExact builds a case-insensitive whole-string match on the trimmed value.
func ciExact(v string) primitive.Regex {
	return primitive.Regex{
		Pattern: "^\\s*" + regexp.QuoteMeta(strings.TrimSpace(v)) + "\\s*$",
		Options: "i",
	}
}
