package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/model"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

// EventSink receives completed prediction records, e.g. a Kafka publisher.
type EventSink interface {
	Publish(ctx context.Context, recs []domain.PredictionRecord) error
}

// Request describes one batch forecast run.
type Request struct {
	// UserIDs restricts the run to the named users; empty means all users.
	UserIDs []string

	// Days is the window length; defaults to 7 when zero.
	Days int

	// ReferenceDate is the first forecast day; defaults to today when zero.
	ReferenceDate time.Time

	// MinUsers aborts the run with ErrDataUnavailable when fewer qualifying
	// users exist. Defaults to 1 when zero.
	MinUsers int

	// ForceRecompute bypasses the prediction cache read path.
	ForceRecompute bool
}

// SkippedUser records why one user produced no forecast in a batch.
type SkippedUser struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// BatchResult is a completed batch: one UserForecast per successful user,
// ordered by user ID, plus a skip record per failed user. FromCache marks
// results served entirely from the prediction cache.
type BatchResult struct {
	Forecasts []UserForecast `json:"forecasts"`
	Skipped   []SkippedUser  `json:"skipped,omitempty"`
	FromCache bool           `json:"from_cache,omitempty"`
}

// Runner executes batch forecasts: cache-first read, bounded per-user
// fan-out, idempotent cache writes, optional event publishing.
type Runner struct {
	users   store.UserStore
	cache   store.PredictionCache
	orch    *Orchestrator
	sink    EventSink
	workers int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRunner wires a batch runner. workers bounds the per-user fan-out and
// should match the backing store's connection budget; values below 1 are
// raised to 1. sink may be nil to disable event publishing.
func NewRunner(users store.UserStore, cache store.PredictionCache, orch *Orchestrator, sink EventSink, workers int, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		users:   users,
		cache:   cache,
		orch:    orch,
		sink:    sink,
		workers: workers,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes one batch. Run-level failures (no users, model mismatch) are
// returned as errors; per-user failures become Skipped entries and never fail
// the batch. Cancelling ctx abandons remaining work but leaves every cache
// entry already written individually valid.
func (r *Runner) Run(ctx context.Context, req Request) (BatchResult, error) {
	start := time.Now()
	r.metrics.BatchRunning.Set(1)
	defer r.metrics.BatchRunning.Set(0)
	defer func() {
		r.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	req = withDefaults(req)

	users, err := r.loadUsers(ctx, req)
	if err != nil {
		return BatchResult{}, err
	}

	dates := windowDates(req.ReferenceDate, req.Days)

	if !req.ForceRecompute {
		if cached, ok := r.fromCache(ctx, users, dates); ok {
			r.metrics.CacheServes.Inc()
			r.logger.Info("batch served from prediction cache",
				"users", len(users), "days", req.Days)
			return cached, nil
		}
	}

	result, recs, err := r.compute(ctx, users, req)
	if err != nil {
		return BatchResult{}, err
	}

	if r.sink != nil && len(recs) > 0 {
		if err := r.sink.Publish(ctx, recs); err != nil {
			// Publishing is best-effort; the cache already holds the results.
			r.logger.Warn("publish prediction events failed", "error", err, "count", len(recs))
		} else {
			r.metrics.EventsPublished.Add(float64(len(recs)))
		}
	}

	r.logger.Info("batch complete",
		"users", len(result.Forecasts),
		"skipped", len(result.Skipped),
		"days", req.Days,
		"duration", time.Since(start),
	)
	return result, nil
}

func withDefaults(req Request) Request {
	if req.Days <= 0 {
		req.Days = 7
	}
	if req.ReferenceDate.IsZero() {
		today, _ := domain.ParseDay(domain.Today())
		req.ReferenceDate = today
	}
	if req.MinUsers <= 0 {
		req.MinUsers = 1
	}
	return req
}

func (r *Runner) loadUsers(ctx context.Context, req Request) ([]domain.User, error) {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(req.UserIDs) > 0 {
		wanted := make(map[string]struct{}, len(req.UserIDs))
		for _, id := range req.UserIDs {
			wanted[id] = struct{}{}
		}
		filtered := users[:0]
		for _, u := range users {
			if _, ok := wanted[u.ID]; ok {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	if len(users) < req.MinUsers {
		return nil, fmt.Errorf("%w: %d users, need at least %d", ErrDataUnavailable, len(users), req.MinUsers)
	}
	return users, nil
}

// fromCache returns the batch result if every (user, date) pair for the
// orchestrator's target is already cached. Any gap falls through to compute.
func (r *Runner) fromCache(ctx context.Context, users []domain.User, dates []string) (BatchResult, bool) {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	cached, err := r.cache.GetBatch(ctx, ids, dates)
	if err != nil {
		r.logger.Warn("prediction cache read failed", "error", err)
		return BatchResult{}, false
	}

	result := BatchResult{FromCache: true, Forecasts: make([]UserForecast, 0, len(users))}
	for _, id := range ids {
		uf := UserForecast{UserID: id, Days: make([]DayForecast, 0, len(dates))}
		for _, d := range dates {
			rec, ok := cached[id][d]
			if !ok || rec.Target != r.orch.Target() {
				return BatchResult{}, false
			}
			uf.Days = append(uf.Days, DayForecast{
				Date:        rec.Date,
				Score:       rec.Score,
				Probability: rec.Probability,
				Tier:        rec.Tier,
				Degraded:    rec.Degraded,
			})
		}
		result.Forecasts = append(result.Forecasts, uf)
	}
	sort.Slice(result.Forecasts, func(i, j int) bool {
		return result.Forecasts[i].UserID < result.Forecasts[j].UserID
	})
	return result, true
}

// compute fans the per-user forecasts out across the worker pool. Per-user
// errors are collected as skips; model-level errors abort the whole run.
func (r *Runner) compute(ctx context.Context, users []domain.User, req Request) (BatchResult, []domain.PredictionRecord, error) {
	var (
		mu        sync.Mutex
		forecasts []UserForecast
		skipped   []SkippedUser
		records   []domain.PredictionRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, user := range users {
		g.Go(func() error {
			uf, err := r.orch.ForecastUser(gctx, user, req.Days, req.ReferenceDate)
			if err != nil {
				if fatal := runFatal(err); fatal != nil {
					return fatal
				}
				r.logger.Warn("skipping user", "user_id", user.ID, "reason", err)
				r.metrics.UsersSkipped.Inc()
				mu.Lock()
				skipped = append(skipped, SkippedUser{UserID: user.ID, Reason: err.Error()})
				mu.Unlock()
				return nil
			}

			recs, err := r.persist(gctx, uf)
			if err != nil {
				return err
			}
			r.metrics.UsersForecast.Inc()
			mu.Lock()
			forecasts = append(forecasts, uf)
			records = append(records, recs...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, nil, err
	}

	sort.Slice(forecasts, func(i, j int) bool { return forecasts[i].UserID < forecasts[j].UserID })
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].UserID < skipped[j].UserID })
	return BatchResult{Forecasts: forecasts, Skipped: skipped}, records, nil
}

// persist upserts one user's window into the prediction cache. Each record is
// written whole; a cancellation between records leaves the earlier ones valid.
func (r *Runner) persist(ctx context.Context, uf UserForecast) ([]domain.PredictionRecord, error) {
	recs := make([]domain.PredictionRecord, 0, len(uf.Days))
	for _, day := range uf.Days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := domain.PredictionRecord{
			ID:          domain.PredictionID(uf.UserID, day.Date),
			UserID:      uf.UserID,
			Date:        day.Date,
			Target:      r.orch.Target(),
			Score:       day.Score,
			Probability: day.Probability,
			Tier:        day.Tier,
			Degraded:    day.Degraded,
			UpdatedAt:   domain.Now(),
		}
		if err := r.cache.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("cache upsert %s %s: %w", rec.UserID, rec.Date, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// runFatal classifies an error as run-level (abort everything) or user-level
// (skip and continue). Model artifact problems poison every user equally, so
// they abort; everything else is isolated to the one user.
func runFatal(err error) error {
	var mismatch *model.FeatureMismatchError
	switch {
	case errors.Is(err, model.ErrModelNotFound), errors.As(err, &mismatch):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return nil
	}
}

// windowDates enumerates the day keys of a forecast window.
func windowDates(refDate time.Time, days int) []string {
	out := make([]string, days)
	for i := 0; i < days; i++ {
		out[i] = domain.DayKey(refDate.AddDate(0, 0, i))
	}
	return out
}
