// Package mongo holds the MongoDB adapters for credit history.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/letsema/mfi/internal/domain/model"
)

// Collection names.
const (
	CreditRecordCollection  = "credit_history"
	CreditProfileCollection = "distributed_credit_history"
)

// CreditRecordStore implements port.CreditRecordStore.
type CreditRecordStore struct {
	coll *mongo.Collection
}

// NewCreditRecordStore creates a store over db's credit record collection.
func NewCreditRecordStore(db *mongo.Database) *CreditRecordStore {
	return &CreditRecordStore{coll: db.Collection(CreditRecordCollection)}
}

// Insert appends a record. Records are never updated.
func (s *CreditRecordStore) Insert(ctx context.Context, r model.CreditRecord) error {
	doc, err := toCreditRecordDoc(r)
	if err != nil {
		return fmt.Errorf("encode credit record: %w", err)
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert credit record: %w", err)
	}
	return nil
}

// FindByBorrowerIDs returns every record filed for the given borrowers,
// oldest first.
func (s *CreditRecordStore) FindByBorrowerIDs(ctx context.Context, borrowerIDs []string) ([]model.CreditRecord, error) {
	if len(borrowerIDs) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"borrower_id": bson.M{"$in": borrowerIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find credit records: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.CreditRecord
	for cur.Next(ctx) {
		var doc creditRecordDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode credit record: %w", err)
		}
		r, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit records: %w", err)
	}
	return out, nil
}
