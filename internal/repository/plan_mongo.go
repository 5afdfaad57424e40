package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// PlanMongo implements service.PlanRepository across the "plans" registry
// collection and the "plan_rows" execution-row collection.
type PlanMongo struct {
	plans *mongo.Collection
	rows  *mongo.Collection
}

// NewPlanRepository wires the collections.
func NewPlanRepository(db *mongo.Database) *PlanMongo {
	return &PlanMongo{
		plans: db.Collection("plans"),
		rows:  db.Collection("plan_rows"),
	}
}

// Insert writes the registry entry and its snapshot rows. There is no
// multi-document transaction here; a failed row insert rolls the registry
// entry back so a half-created plan never becomes visible.
func (r *PlanMongo) Insert(ctx context.Context, plan models.TestPlan, rows []models.PlanRow) (models.TestPlan, error) {
	res, err := r.plans.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.TestPlan{}, fmt.Errorf("test plan %q %w", plan.Name, service.ErrDuplicate)
		}
		return models.TestPlan{}, fmt.Errorf("inserting plan: %w", err)
	}
	plan.ID = res.InsertedID.(primitive.ObjectID)

	if len(rows) > 0 {
		docs := make([]interface{}, len(rows))
		for i := range rows {
			rows[i].PlanID = plan.ID
			docs[i] = rows[i]
		}
		if _, err := r.rows.InsertMany(ctx, docs); err != nil {
			_, _ = r.plans.DeleteOne(ctx, bson.M{"_id": plan.ID})
			_, _ = r.rows.DeleteMany(ctx, bson.M{"plan_id": plan.ID})
			return models.TestPlan{}, fmt.Errorf("inserting plan rows: %w", err)
		}
	}
	return plan, nil
}

// List returns every registry entry, sorted by name.
func (r *PlanMongo) List(ctx context.Context) ([]models.TestPlan, error) {
	return r.findPlans(ctx, bson.M{})
}

// ListForUser returns the plans the user is assigned to, sorted by name.
func (r *PlanMongo) ListForUser(ctx context.Context, username string) ([]models.TestPlan, error) {
	return r.findPlans(ctx, bson.M{"assigned_users": username})
}

func (r *PlanMongo) findPlans(ctx context.Context, filter bson.M) ([]models.TestPlan, error) {
	cur, err := r.plans.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	var plans []models.TestPlan
	if err := cur.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("decoding plans: %w", err)
	}
	return plans, nil
}

// FindByName fetches one registry entry.
func (r *PlanMongo) FindByName(ctx context.Context, name string) (models.TestPlan, error) {
	return r.findPlan(ctx, bson.M{"name": name})
}

// Latest returns the most recently created plan.
func (r *PlanMongo) Latest(ctx context.Context) (models.TestPlan, error) {
	return r.findPlan(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// LatestForUser returns the most recently created plan assigned to the user.
func (r *PlanMongo) LatestForUser(ctx context.Context, username string) (models.TestPlan, error) {
	return r.findPlan(ctx,
		bson.M{"assigned_users": username},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
}

func (r *PlanMongo) findPlan(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (models.TestPlan, error) {
	var plan models.TestPlan
	err := r.plans.FindOne(ctx, filter, opts...).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.TestPlan{}, fmt.Errorf("test plan: %w", service.ErrNotFound)
	}
	if err != nil {
		return models.TestPlan{}, fmt.Errorf("finding plan: %w", err)
	}
	return plan, nil
}

// Delete removes the registry entry and all of its rows.
func (r *PlanMongo) Delete(ctx context.Context, planID primitive.ObjectID) error {
	if _, err := r.rows.DeleteMany(ctx, bson.M{"plan_id": planID}); err != nil {
		return fmt.Errorf("deleting plan rows: %w", err)
	}
	if _, err := r.plans.DeleteOne(ctx, bson.M{"_id": planID}); err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return nil
}

// Rows returns every execution row of a plan in test-case order.
func (r *PlanMongo) Rows(ctx context.Context, planID primitive.ObjectID) ([]models.PlanRow, error) {
	cur, err := r.rows.Find(ctx,
		bson.M{"plan_id": planID},
		options.Find().SetSort(bson.D{{Key: "testcase_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing plan rows: %w", err)
	}
	var rows []models.PlanRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding plan rows: %w", err)
	}
	return rows, nil
}

// Row fetches one execution row.
func (r *PlanMongo) Row(ctx context.Context, planID primitive.ObjectID, testcaseID string) (models.PlanRow, error) {
	var row models.PlanRow
	err := r.rows.FindOne(ctx, bson.M{"plan_id": planID, "testcase_id": testcaseID}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PlanRow{}, fmt.Errorf("test case %s in plan: %w", testcaseID, service.ErrNotFound)
	}
	if err != nil {
		return models.PlanRow{}, fmt.Errorf("finding plan row: %w", err)
	}
	return row, nil
}

// UpdateRow applies the non-nil update fields and records the executor.
func (r *PlanMongo) UpdateRow(ctx context.Context, planID primitive.ObjectID, testcaseID string, upd models.RowUpdate, executedBy string) (models.PlanRow, error) {
	set := rowUpdateFields(upd)
	set["executed_by"] = executedBy

	res := r.rows.FindOneAndUpdate(ctx,
		bson.M{"plan_id": planID, "testcase_id": testcaseID},
		bson.M{"$set": set},
		afterUpdate(),
	)

	var row models.PlanRow
	if err := res.Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PlanRow{}, fmt.Errorf("test case %s in plan: %w", testcaseID, service.ErrNotFound)
		}
		return models.PlanRow{}, fmt.Errorf("updating plan row: %w", err)
	}
	return row, nil
}

// LinkBug points the row at bugID and resets its status to Open. A single
// document update, so concurrent relinks are last-write-wins.
func (r *PlanMongo) LinkBug(ctx context.Context, planID primitive.ObjectID, testcaseID string, bugID int) (models.PlanRow, error) {
	res := r.rows.FindOneAndUpdate(ctx,
		bson.M{"plan_id": planID, "testcase_id": testcaseID},
		bson.M{"$set": bson.M{"bug_id": bugID, "bug_status": models.BugOpen}},
		afterUpdate(),
	)

	var row models.PlanRow
	if err := res.Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PlanRow{}, fmt.Errorf("test case %s in plan: %w", testcaseID, service.ErrNotFound)
		}
		return models.PlanRow{}, fmt.Errorf("linking bug: %w", err)
	}
	return row, nil
}

// SetBugStatus updates bug_status on the row matching the (plan, test case,
// bug) triple.
func (r *PlanMongo) SetBugStatus(ctx context.Context, planID primitive.ObjectID, testcaseID string, bugID int, status string) error {
	res, err := r.rows.UpdateOne(ctx,
		bson.M{"plan_id": planID, "testcase_id": testcaseID, "bug_id": bugID},
		bson.M{"$set": bson.M{"bug_status": status}},
	)
	if err != nil {
		return fmt.Errorf("updating bug status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no link for bug %d on test case %s: %w", bugID, testcaseID, service.ErrNotFound)
	}
	return nil
}

// Distribution groups the plan's rows by one field and counts each value.
func (r *PlanMongo) Distribution(ctx context.Context, planID primitive.ObjectID, field string) ([]models.Distribution, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "plan_id", Value: planID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.rows.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s distribution: %w", field, err)
	}
	var dist []models.Distribution
	if err := cur.All(ctx, &dist); err != nil {
		return nil, fmt.Errorf("decoding distribution: %w", err)
	}
	return dist, nil
}
