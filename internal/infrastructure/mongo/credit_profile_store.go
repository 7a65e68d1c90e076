package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/letsema/mfi/internal/domain/model"
)

// CreditProfileStore implements port.CreditProfileStore. Each profile is
// one document keyed by national ID and location code.
type CreditProfileStore struct {
	coll *mongo.Collection
}

// NewCreditProfileStore creates a store over db's profile collection.
func NewCreditProfileStore(db *mongo.Database) *CreditProfileStore {
	return &CreditProfileStore{coll: db.Collection(CreditProfileCollection)}
}

// Find loads the profile for (nationalID, locationCode).
func (s *CreditProfileStore) Find(ctx context.Context, nationalID, locationCode string) (model.ConsolidatedCreditProfile, error) {
	var doc profileDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": profileID(nationalID, locationCode)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ConsolidatedCreditProfile{}, fmt.Errorf("%w: %s in %s", model.ErrProfileNotFound, nationalID, locationCode)
	}
	if err != nil {
		return model.ConsolidatedCreditProfile{}, fmt.Errorf("find credit profile: %w", err)
	}
	return doc.toModel()
}

// Save inserts a new profile or applies an aggregation to a stored one.
// Updates only succeed against the version the profile was loaded at; the
// pending audit entries are pushed in the same update.
func (s *CreditProfileStore) Save(ctx context.Context, p model.ConsolidatedCreditProfile) error {
	doc, err := toProfileDoc(p)
	if err != nil {
		return fmt.Errorf("encode credit profile: %w", err)
	}

	if p.IsNew() {
		doc.Version = 1
		if _, err := s.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: profile %s created concurrently", model.ErrConcurrentModification, doc.ID)
			}
			return fmt.Errorf("insert credit profile: %w", err)
		}
		return nil
	}

	update := bson.M{
		"$set": bson.M{
			"borrower_id":               doc.BorrowerID,
			"aggregated_credit_score":   doc.AggregatedCreditScore,
			"total_loans":               doc.TotalLoans,
			"active_loans":              doc.ActiveLoans,
			"total_amount_borrowed":     doc.TotalAmountBorrowed,
			"total_amount_repaid":       doc.TotalAmountRepaid,
			"on_time_payments":          doc.OnTimePayments,
			"late_payments":             doc.LatePayments,
			"defaulted_payments":        doc.DefaultedPayments,
			"risk_factors":              doc.RiskFactors,
			"contributing_institutions": doc.Contributors,
			"institution_snapshots":     doc.Snapshots,
			"updated_at":                doc.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	if pending := p.PendingAudit(); len(pending) > 0 {
		update["$push"] = bson.M{"data_sharing_log": bson.M{"$each": toAuditDocs(pending)}}
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": doc.ID, "version": p.Version()}, update)
	if err != nil {
		return fmt.Errorf("update credit profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: profile %s at version %d", model.ErrConcurrentModification, doc.ID, p.Version())
	}
	return nil
}

// AppendAudit pushes entries onto the profile's log without touching its
// figures or version.
func (s *CreditProfileStore) AppendAudit(ctx context.Context, nationalID, locationCode string, entries ...model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	id := profileID(nationalID, locationCode)
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"data_sharing_log": bson.M{"$each": toAuditDocs(entries)}}},
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", model.ErrProfileNotFound, id)
	}
	return nil
}

type statsResult struct {
	ByLocation []struct {
		Location string `bson:"_id"`
		Count    int    `bson:"count"`
	} `bson:"by_location"`
	Overall []struct {
		Total             int     `bson:"total"`
		AverageScore      float64 `bson:"average_score"`
		UniqueNationalIDs int     `bson:"unique_national_ids"`
		ActiveLoans       int     `bson:"active_loans"`
	} `bson:"overall"`
}

// Stats summarises all profiles in one aggregation.
func (s *CreditProfileStore) Stats(ctx context.Context) (model.CreditHistoryStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"by_location": bson.A{
				bson.M{"$group": bson.M{"_id": "$location", "count": bson.M{"$sum": 1}}},
			},
			"overall": bson.A{
				bson.M{"$group": bson.M{
					"_id":           nil,
					"total":         bson.M{"$sum": 1},
					"average_score": bson.M{"$avg": "$aggregated_credit_score"},
					"national_ids":  bson.M{"$addToSet": "$national_id"},
					"active_loans":  bson.M{"$sum": "$active_loans"},
				}},
				bson.M{"$project": bson.M{
					"total":               1,
					"average_score":       1,
					"unique_national_ids": bson.M{"$size": "$national_ids"},
					"active_loans":        1,
				}},
			},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return model.CreditHistoryStats{}, fmt.Errorf("aggregate credit profile stats: %w", err)
	}
	defer cur.Close(ctx)

	var results []statsResult
	if err := cur.All(ctx, &results); err != nil {
		return model.CreditHistoryStats{}, fmt.Errorf("decode credit profile stats: %w", err)
	}

	stats := model.CreditHistoryStats{ProfilesByLocation: map[string]int{}}
	if len(results) == 0 {
		return stats, nil
	}
	for _, l := range results[0].ByLocation {
		stats.ProfilesByLocation[l.Location] = l.Count
	}
	if len(results[0].Overall) > 0 {
		o := results[0].Overall[0]
		stats.TotalProfiles = o.Total
		stats.AverageCreditScore = o.AverageScore
		stats.UniqueNationalIDs = o.UniqueNationalIDs
		stats.TotalActiveLoans = o.ActiveLoans
	}
	return stats, nil
}
