// Package forecast drives the feature builder and model adapter across a
// rolling date window per user, maps raw probabilities to display scores and
// tiers, and fans the per-user work out across a bounded worker pool.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/feature"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

// Display score bounds. Raw probabilities map into this range so the UI can
// show gradation instead of a 0/1 label.
const (
	minScore = 1.0
	maxScore = 5.0
)

// EnvReader is the slice of the environmental store the orchestrator needs.
type EnvReader interface {
	Daily(ctx context.Context, locationID, date string) (domain.EnvironmentalRecord, error)
}

// Scorer produces class probabilities for a feature vector. See model.Scorer.
type Scorer interface {
	Predict(values []float64) ([]float64, error)
	Classes() []int
}

// DayForecast is one forecast day for one user. Degraded days carry an
// estimated environmental substitute rather than a real forecast row.
type DayForecast struct {
	Date        string          `json:"date"`
	Score       float64         `json:"score"`
	Probability float64         `json:"probability"`
	Tier        domain.RiskTier `json:"tier"`
	Degraded    bool            `json:"degraded,omitempty"`
}

// UserForecast is the ordered forecast window for one user: exactly as many
// entries as requested days, ascending by date, degraded days included.
type UserForecast struct {
	UserID string        `json:"user_id"`
	Days   []DayForecast `json:"days"`
}

// Orchestrator computes a single user's forecast window.
type Orchestrator struct {
	env             EnvReader
	scorer          Scorer
	target          string
	defaultLocation string
	logger          *slog.Logger
	metrics         *observability.Metrics
}

// NewOrchestrator wires the orchestrator. Target must be one of
// domain.TargetRisk or domain.TargetFlare and should match the loaded
// artifact's target. defaultLocation serves users whose profile carries no
// usable location.
func NewOrchestrator(env EnvReader, scorer Scorer, target, defaultLocation string, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		env:             env,
		scorer:          scorer,
		target:          target,
		defaultLocation: defaultLocation,
		logger:          logger,
		metrics:         metrics,
	}
}

// Target returns the prediction target this orchestrator scores.
func (o *Orchestrator) Target() string { return o.target }

// ForecastUser computes `days` consecutive daily forecasts starting at
// refDate. A missing environmental row degrades that single day with a
// deterministic estimate; it never aborts the window. Lag features for days
// after the first reuse the most recent actual check-in available at refDate,
// since future check-ins are unknowable.
func (o *Orchestrator) ForecastUser(ctx context.Context, user domain.User, days int, refDate time.Time) (UserForecast, error) {
	if days <= 0 {
		return UserForecast{}, fmt.Errorf("days must be positive, got %d", days)
	}
	if err := domain.ValidateUser(user); err != nil {
		return UserForecast{}, &UserComputeError{UserID: user.ID, Err: err}
	}

	locationID := domain.ProfileLocationID(user.Profile, o.defaultLocation)
	refDay := domain.DayKey(refDate)
	anchor := feature.LatestOnOrBefore(user.CheckIns, refDay)

	out := UserForecast{UserID: user.ID, Days: make([]DayForecast, 0, days)}
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return UserForecast{}, err
		}

		date := refDate.AddDate(0, 0, i)
		rec, degraded := o.resolveEnv(ctx, locationID, date)

		// Day one joins check-ins by calendar date like the historical
		// builder; later days have no check-in and anchor their lag on the
		// most recent real one.
		var current, lag *domain.CheckIn
		if i == 0 {
			current = feature.CheckInOn(user.CheckIns, domain.DayKey(date))
			lag = feature.CheckInOn(user.CheckIns, domain.DayKey(date.AddDate(0, 0, -1)))
		} else {
			lag = anchor
		}

		vec := feature.Compose(user.ID, user.Profile, current, lag, rec, date)
		probs, err := o.scorer.Predict(vec.Values)
		if err != nil {
			return UserForecast{}, fmt.Errorf("score %s %s: %w", user.ID, vec.Date, err)
		}

		score, probability := o.mapScore(probs)
		if degraded {
			o.metrics.DaysDegraded.Inc()
		}
		out.Days = append(out.Days, DayForecast{
			Date:        vec.Date,
			Score:       score,
			Probability: probability,
			Tier:        domain.TierFor(score),
			Degraded:    degraded,
		})
	}
	return out, nil
}

// resolveEnv fetches the environmental row for a date, substituting a
// deterministic seasonal estimate when no row exists. Store failures degrade
// the day too: one bad read never sinks the window.
func (o *Orchestrator) resolveEnv(ctx context.Context, locationID string, date time.Time) (domain.EnvironmentalRecord, bool) {
	day := domain.DayKey(date)
	rec, err := o.env.Daily(ctx, locationID, day)
	if err == nil {
		return rec, rec.Estimated
	}
	if !errors.Is(err, store.ErrNotFound) {
		o.logger.Warn("environmental read failed, estimating",
			"location_id", locationID, "date", day, "error", err)
	} else {
		o.logger.Debug("no environmental row, estimating",
			"location_id", locationID, "date", day)
	}
	return domain.EstimateEnvironmental(locationID, date), true
}

// mapScore converts class probabilities to the bounded display score.
// For the 1–5 risk target the score is the probability-weighted class value;
// for the binary flare target it is 1 + 4·P(flare). Both clamp to [1,5].
func (o *Orchestrator) mapScore(probs []float64) (score, probability float64) {
	classes := o.scorer.Classes()

	if o.target == domain.TargetFlare {
		pFlare := 0.0
		for i, c := range classes {
			if c == 1 && i < len(probs) {
				pFlare = probs[i]
			}
		}
		return clampScore(minScore + (maxScore-minScore)*pFlare), pFlare
	}

	expected := 0.0
	maxProb := 0.0
	for i, c := range classes {
		if i >= len(probs) {
			break
		}
		expected += probs[i] * float64(c)
		if probs[i] > maxProb {
			maxProb = probs[i]
		}
	}
	return clampScore(expected), maxProb
}

func clampScore(v float64) float64 {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
