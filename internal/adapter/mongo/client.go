// Package mongo implements the user, environmental, and prediction stores on
// a MongoDB document database.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/couchcryptid/asthma-forecast-service/internal/config"
)

// Client wraps a connected Mongo database handle and hands out the store
// implementations bound to the configured collections.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.Config
}

// Connect dials the configured MongoDB deployment and verifies it with a
// ping. Callers own the returned client and must Close it on shutdown.
func Connect(ctx context.Context, cfg *config.Config) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Client{
		client: client,
		db:     client.Database(cfg.MongoDatabase),
		cfg:    cfg,
	}, nil
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CheckReadiness verifies the database connection is still healthy. Used by
// the readiness probe.
func (c *Client) CheckReadiness(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Users returns the user store bound to the configured collection.
func (c *Client) Users() *UserStore {
	return &UserStore{coll: c.db.Collection(c.cfg.UsersCollection)}
}

// Environmental returns the environmental store bound to the configured collection.
func (c *Client) Environmental() *EnvStore {
	return &EnvStore{coll: c.db.Collection(c.cfg.EnvironmentalCollection)}
}

// Predictions returns the prediction cache bound to the configured collection.
func (c *Client) Predictions() *PredictionCache {
	return &PredictionCache{coll: c.db.Collection(c.cfg.PredictionsCollection)}
}
