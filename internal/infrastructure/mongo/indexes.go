package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes both stores query by. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	records := []mongo.IndexModel{
		{Keys: bson.D{{Key: "borrower_id", Value: 1}, {Key: "recorded_at", Value: 1}}},
		{Keys: bson.D{{Key: "national_id", Value: 1}}},
	}
	if _, err := db.Collection(CreditRecordCollection).Indexes().CreateMany(ctx, records); err != nil {
		return fmt.Errorf("create credit record indexes: %w", err)
	}

	profiles := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "national_id", Value: 1}, {Key: "location", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("national_id_location_unique"),
		},
	}
	if _, err := db.Collection(CreditProfileCollection).Indexes().CreateMany(ctx, profiles); err != nil {
		return fmt.Errorf("create credit profile indexes: %w", err)
	}
	return nil
}
