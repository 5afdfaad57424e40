package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. CreateOne is
// a no-op for indexes that already exist, so this is safe to run on every
// startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "emp_id", Value: 1}}, Options: unique}},
		{"testcases", mongo.IndexModel{Keys: bson.D{{Key: "test_scenario_id", Value: 1}}, Options: unique}},
		{"testcases", mongo.IndexModel{Keys: bson.D{{Key: "test_suite", Value: 1}}}},
		{"plans", mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{"plan_rows", mongo.IndexModel{Keys: bson.D{{Key: "plan_id", Value: 1}, {Key: "testcase_id", Value: 1}}}},
		{"plan_rows", mongo.IndexModel{Keys: bson.D{{Key: "bug_id", Value: 1}}}},
		{"bugs", mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		{"pending_requests", mongo.IndexModel{Keys: bson.D{{Key: "testcase_id", Value: 1}}, Options: unique}},
		{"pending_requests", mongo.IndexModel{Keys: bson.D{{Key: "submitted_by", Value: 1}}}},
	}

	for _, s := range specs {
		if _, err := db.Collection(s.collection).Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("creating index on %s: %w", s.collection, err)
		}
	}
	return nil
}
