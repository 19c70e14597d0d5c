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

// EnvStore reads daily environmental rows keyed by (location_id, date).
// It implements store.EnvStore.
type EnvStore struct {
	coll *mongo.Collection
}

// Daily returns the environmental row for one location and calendar day,
// or store.ErrNotFound when no row exists.
func (s *EnvStore) Daily(ctx context.Context, locationID, date string) (domain.EnvironmentalRecord, error) {
	var rec domain.EnvironmentalRecord
	err := s.coll.FindOne(ctx, bson.D{
		{Key: "location_id", Value: locationID},
		{Key: "date", Value: date},
	}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.EnvironmentalRecord{}, store.ErrNotFound
	}
	if err != nil {
		return domain.EnvironmentalRecord{}, fmt.Errorf("find environmental %s %s: %w", locationID, date, err)
	}
	return rec, nil
}

// Range returns all rows for a location within [from, to] inclusive,
// ascending by date. Dates are day keys, so lexicographic order is
// chronological order.
func (s *EnvStore) Range(ctx context.Context, locationID, from, to string) ([]domain.EnvironmentalRecord, error) {
	cur, err := s.coll.Find(ctx, bson.D{
		{Key: "location_id", Value: locationID},
		{Key: "date", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}},
	}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find environmental range %s: %w", locationID, err)
	}
	defer cur.Close(ctx)

	var recs []domain.EnvironmentalRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode environmental range: %w", err)
	}
	return recs, nil
}

// UpsertDaily writes one environmental row keyed by (location_id, date).
// Used by the seeder.
func (s *EnvStore) UpsertDaily(ctx context.Context, rec domain.EnvironmentalRecord) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{
			{Key: "location_id", Value: rec.LocationID},
			{Key: "date", Value: rec.Date},
		},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert environmental %s %s: %w", rec.LocationID, rec.Date, err)
	}
	return nil
}
