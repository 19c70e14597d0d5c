package store

import (
	"context"
	"sort"
	"sync"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

// MemoryUserStore is an in-memory UserStore for tests and seed dry runs.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewMemoryUserStore(users ...domain.User) *MemoryUserStore {
	return &MemoryUserStore{users: users}
}

func (s *MemoryUserStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryUserStore) Add(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// MemoryEnvStore is an in-memory EnvStore keyed by (location_id, date).
type MemoryEnvStore struct {
	mu   sync.RWMutex
	rows map[string]domain.EnvironmentalRecord
}

func NewMemoryEnvStore(rows ...domain.EnvironmentalRecord) *MemoryEnvStore {
	s := &MemoryEnvStore{rows: make(map[string]domain.EnvironmentalRecord, len(rows))}
	for _, r := range rows {
		s.Put(r)
	}
	return s
}

func (s *MemoryEnvStore) Put(rec domain.EnvironmentalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.LocationID+"|"+rec.Date] = rec
}

func (s *MemoryEnvStore) Daily(_ context.Context, locationID, date string) (domain.EnvironmentalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[locationID+"|"+date]
	if !ok {
		return domain.EnvironmentalRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryEnvStore) Range(_ context.Context, locationID, from, to string) ([]domain.EnvironmentalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.EnvironmentalRecord
	for _, rec := range s.rows {
		if rec.LocationID == locationID && rec.Date >= from && rec.Date <= to {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// MemoryPredictionCache is an in-memory PredictionCache with last-write-wins
// upserts, matching the semantics of the Mongo-backed cache.
type MemoryPredictionCache struct {
	mu   sync.RWMutex
	recs map[string]domain.PredictionRecord // key: userID|date
}

func NewMemoryPredictionCache() *MemoryPredictionCache {
	return &MemoryPredictionCache{recs: make(map[string]domain.PredictionRecord)}
}

func (s *MemoryPredictionCache) Upsert(_ context.Context, rec domain.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.UserID+"|"+rec.Date] = rec
	return nil
}

func (s *MemoryPredictionCache) Get(_ context.Context, userID, date string) (domain.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[userID+"|"+date]
	if !ok {
		return domain.PredictionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryPredictionCache) GetBatch(_ context.Context, userIDs, dates []string) (map[string]map[string]domain.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]domain.PredictionRecord)
	for _, uid := range userIDs {
		for _, d := range dates {
			if rec, ok := s.recs[uid+"|"+d]; ok {
				if out[uid] == nil {
					out[uid] = make(map[string]domain.PredictionRecord)
				}
				out[uid][d] = rec
			}
		}
	}
	return out, nil
}

// Len reports how many records the cache holds. Test helper.
func (s *MemoryPredictionCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}
