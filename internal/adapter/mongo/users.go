package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

// UserStore reads user profiles and embedded check-in histories.
// It implements store.UserStore.
type UserStore struct {
	coll *mongo.Collection
}

// ListUsers returns every user document, profile and check-ins included,
// ordered by user ID so batch runs are deterministic.
func (s *UserStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpsertUser writes a user document keyed by its ID. Used by the seeder.
func (s *UserStore) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: user.ID}},
		user,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}
