package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

// PredictionCache persists prediction records keyed by their deterministic ID,
// so recomputing a window overwrites in place instead of growing the
// collection. It implements store.PredictionCache.
type PredictionCache struct {
	coll *mongo.Collection
}

// Upsert writes one prediction record. The deterministic _id makes repeated
// runs for the same (user, date) idempotent.
func (c *PredictionCache) Upsert(ctx context.Context, rec domain.PredictionRecord) error {
	_, err := c.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: rec.ID}},
		bson.D{{Key: "$set", Value: rec}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert prediction %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the cached prediction for one user and day, or
// store.ErrNotFound.
func (c *PredictionCache) Get(ctx context.Context, userID, date string) (domain.PredictionRecord, error) {
	var rec domain.PredictionRecord
	err := c.coll.FindOne(ctx, bson.D{
		{Key: "_id", Value: domain.PredictionID(userID, date)},
	}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.PredictionRecord{}, store.ErrNotFound
	}
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("find prediction %s %s: %w", userID, date, err)
	}
	return rec, nil
}

// GetBatch returns all cached predictions for the cross product of users and
// dates in one query, keyed by user then date. Missing pairs are simply
// absent from the result.
func (c *PredictionCache) GetBatch(ctx context.Context, userIDs, dates []string) (map[string]map[string]domain.PredictionRecord, error) {
	out := make(map[string]map[string]domain.PredictionRecord, len(userIDs))
	if len(userIDs) == 0 || len(dates) == 0 {
		return out, nil
	}

	cur, err := c.coll.Find(ctx, bson.D{
		{Key: "user_id", Value: bson.D{{Key: "$in", Value: userIDs}}},
		{Key: "date", Value: bson.D{{Key: "$in", Value: dates}}},
	})
	if err != nil {
		return nil, fmt.Errorf("find predictions: %w", err)
	}
	defer cur.Close(ctx)

	var recs []domain.PredictionRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	for _, rec := range recs {
		byDate, ok := out[rec.UserID]
		if !ok {
			byDate = make(map[string]domain.PredictionRecord, len(dates))
			out[rec.UserID] = byDate
		}
		byDate[rec.Date] = rec
	}
	return out, nil
}
