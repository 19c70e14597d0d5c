// Package store defines the record-store contracts the forecast pipeline
// reads from and writes to, plus in-memory implementations used by tests and
// dry runs. Persistent implementations live in internal/adapter/mongo.
package store

import (
	"context"
	"errors"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

// ErrNotFound is returned by point lookups when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// UserStore reads user profiles with their embedded check-in history.
type UserStore interface {
	// ListUsers returns all users eligible for forecasting.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// EnvStore reads daily environmental rows keyed by (location_id, date).
type EnvStore interface {
	// Daily returns the row for one location and calendar day, or ErrNotFound.
	Daily(ctx context.Context, locationID, date string) (domain.EnvironmentalRecord, error)

	// Range returns all rows for a location between from and to inclusive,
	// ordered ascending by date. Missing days are simply absent.
	Range(ctx context.Context, locationID, from, to string) ([]domain.EnvironmentalRecord, error)
}

// PredictionCache stores one forecast record per (user_id, date) with
// last-write-wins semantics. No TTL: staleness is the caller's judgment.
type PredictionCache interface {
	// Upsert writes a record, replacing any previous one for its (user, date).
	Upsert(ctx context.Context, rec domain.PredictionRecord) error

	// Get returns the record for (user, date), or ErrNotFound.
	Get(ctx context.Context, userID, date string) (domain.PredictionRecord, error)

	// GetBatch returns whichever of the requested (user, date) pairs exist,
	// keyed by userID then date. Absent pairs are silently omitted.
	GetBatch(ctx context.Context, userIDs, dates []string) (map[string]map[string]domain.PredictionRecord, error)
}
