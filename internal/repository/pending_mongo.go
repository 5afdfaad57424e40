package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Johaan1835/TestMatrix/internal/models"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// PendingMongo implements service.PendingRepository on the
// "pending_requests" collection.
type PendingMongo struct {
	db  *mongo.Database
	col *mongo.Collection
}

// NewPendingRepository wires the collection.
func NewPendingRepository(db *mongo.Database) *PendingMongo {
	return &PendingMongo{db: db, col: db.Collection("pending_requests")}
}

// Insert stores a submission with the next request id.
func (r *PendingMongo) Insert(ctx context.Context, pr models.PendingRequest) (models.PendingRequest, error) {
	id, err := nextSequence(ctx, r.db, "pending_testcase_id")
	if err != nil {
		return models.PendingRequest{}, err
	}
	pr.TestCaseID = id

	if _, err := r.col.InsertOne(ctx, pr); err != nil {
		return models.PendingRequest{}, fmt.Errorf("inserting pending request: %w", err)
	}
	return pr, nil
}

// HasScenario reports whether the same scenario+suite is already queued.
func (r *PendingMongo) HasScenario(ctx context.Context, scenario, suite string) (bool, error) {
	return hasScenario(ctx, r.col, scenario, suite)
}

// All returns every request, newest submission first.
func (r *PendingMongo) All(ctx context.Context) ([]models.PendingRequest, error) {
	return r.find(ctx, bson.M{})
}

// ForUser returns one submitter's requests, newest first.
func (r *PendingMongo) ForUser(ctx context.Context, username string) ([]models.PendingRequest, error) {
	return r.find(ctx, bson.M{"submitted_by": username})
}

func (r *PendingMongo) find(ctx context.Context, filter bson.M) ([]models.PendingRequest, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	var requests []models.PendingRequest
	if err := cur.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decoding pending requests: %w", err)
	}
	return requests, nil
}

// ByID fetches one request.
func (r *PendingMongo) ByID(ctx context.Context, id int) (models.PendingRequest, error) {
	var pr models.PendingRequest
	err := r.col.FindOne(ctx, bson.M{"testcase_id": id}).Decode(&pr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PendingRequest{}, fmt.Errorf("pending request %d: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return models.PendingRequest{}, fmt.Errorf("finding pending request: %w", err)
	}
	return pr, nil
}

// Update applies the non-nil fields of upd to one request.
func (r *PendingMongo) Update(ctx context.Context, id int, upd models.RowUpdate) (models.PendingRequest, error) {
	set := rowUpdateFields(upd)
	res := r.col.FindOneAndUpdate(ctx, bson.M{"testcase_id": id}, bson.M{"$set": set}, afterUpdate())

	var pr models.PendingRequest
	if err := res.Decode(&pr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PendingRequest{}, fmt.Errorf("pending request %d: %w", id, service.ErrNotFound)
		}
		return models.PendingRequest{}, fmt.Errorf("updating pending request: %w", err)
	}
	return pr, nil
}

// Transition flips request_status from one value to another. The state
// guard lives in the filter so a concurrent approve/reject loses cleanly.
func (r *PendingMongo) Transition(ctx context.Context, id int, from, to string) (models.PendingRequest, error) {
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"testcase_id": id, "request_status": from},
		bson.M{"$set": bson.M{"request_status": to}},
		afterUpdate(),
	)

	var pr models.PendingRequest
	if err := res.Decode(&pr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PendingRequest{}, fmt.Errorf("pending request %d in state %s: %w", id, from, service.ErrNotFound)
		}
		return models.PendingRequest{}, fmt.Errorf("transitioning pending request: %w", err)
	}
	return pr, nil
}

// rowUpdateFields converts the non-nil fields of a RowUpdate into a $set
// document.
func rowUpdateFields(upd models.RowUpdate) bson.M {
	set := bson.M{}
	if upd.TestResult != nil {
		set["test_result"] = *upd.TestResult
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.ActualResult != nil {
		set["actual_result"] = *upd.ActualResult
	}
	if upd.ExpectedResult != nil {
		set["expected_result"] = *upd.ExpectedResult
	}
	if upd.Comments != nil {
		set["comments"] = *upd.Comments
	}
	return set
}
