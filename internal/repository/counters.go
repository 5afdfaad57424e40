package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// nextSequence reserves the next value of a named counter. The $inc with
// upsert is atomic on the counter document, so concurrent callers never see
// the same value.
func nextSequence(ctx context.Context, db *mongo.Database, name string) (int, error) {
	return nextSequenceN(ctx, db, name, 1)
}

// nextSequenceN reserves a block of n consecutive values and returns the
// first of the block.
func nextSequenceN(ctx context.Context, db *mongo.Database, name string, n int) (int, error) {
	res := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": n}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var doc struct {
		Seq int `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("advancing counter %s: %w", name, err)
	}
	return doc.Seq - n + 1, nil
}

// afterUpdate asks FindOneAndUpdate for the post-update document.
func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
