package forecast

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

// fixedScorer returns the same probabilities for every vector.
type fixedScorer struct {
	classes []int
	probs   []float64
	err     error
}

func (s *fixedScorer) Predict(values []float64) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(s.probs))
	copy(out, s.probs)
	return out, nil
}

func (s *fixedScorer) Classes() []int { return s.classes }

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func envRow(loc, date string) domain.EnvironmentalRecord {
	return domain.EnvironmentalRecord{LocationID: loc, Date: date, AQI: 60, PM25Mean: 15, TempMin: 40, TempMax: 55}
}

func testUser() domain.User {
	return domain.User{
		ID:      "user-1",
		Profile: domain.Profile{ZipCode: "60601", Height: `5'10"`, Weight: "170 lbs", Age: 34},
		CheckIns: []domain.CheckIn{
			{Date: day("2026-02-08"), Wheeze: 2},
			{Date: day("2026-02-09"), Wheeze: 1},
		},
	}
}

func newOrchestrator(env EnvReader, scorer Scorer, target string) *Orchestrator {
	return NewOrchestrator(env, scorer, target, "unknown", slog.Default(), observability.NewMetricsForTesting())
}

func TestForecastUser_ShapeWithMissingEnvDays(t *testing.T) {
	// Environmental rows exist for 4 of the 7 days; the other 3 must still
	// appear, flagged degraded.
	env := store.NewMemoryEnvStore(
		envRow("zip_60601", "2026-02-09"),
		envRow("zip_60601", "2026-02-10"),
		envRow("zip_60601", "2026-02-12"),
		envRow("zip_60601", "2026-02-14"),
	)
	orch := newOrchestrator(env, &fixedScorer{classes: []int{0, 1}, probs: []float64{0.7, 0.3}}, domain.TargetFlare)

	uf, err := orch.ForecastUser(context.Background(), testUser(), 7, day("2026-02-09"))
	require.NoError(t, err)
	require.Len(t, uf.Days, 7)

	for i, d := range uf.Days {
		want := domain.DayKey(day("2026-02-09").AddDate(0, 0, i))
		assert.Equal(t, want, d.Date, "dates must ascend without gaps")
	}

	degraded := map[string]bool{}
	for _, d := range uf.Days {
		degraded[d.Date] = d.Degraded
	}
	assert.False(t, degraded["2026-02-09"])
	assert.True(t, degraded["2026-02-11"])
	assert.True(t, degraded["2026-02-13"])
	assert.True(t, degraded["2026-02-15"])
}

func TestForecastUser_ScoreBoundsAndTiers(t *testing.T) {
	env := store.NewMemoryEnvStore()

	tests := []struct {
		name      string
		pFlare    float64
		wantScore float64
		wantTier  domain.RiskTier
	}{
		{"certain no flare", 0.0, 1.0, domain.TierLow},
		{"coin flip", 0.5, 3.0, domain.TierModerate},
		{"certain flare", 1.0, 5.0, domain.TierHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fixedScorer{classes: []int{0, 1}, probs: []float64{1 - tt.pFlare, tt.pFlare}}
			orch := newOrchestrator(env, scorer, domain.TargetFlare)

			uf, err := orch.ForecastUser(context.Background(), testUser(), 1, day("2026-02-09"))
			require.NoError(t, err)
			require.Len(t, uf.Days, 1)

			assert.InDelta(t, tt.wantScore, uf.Days[0].Score, 1e-9)
			assert.InDelta(t, tt.pFlare, uf.Days[0].Probability, 1e-9)
			assert.Equal(t, tt.wantTier, uf.Days[0].Tier)
		})
	}
}

func TestForecastUser_RiskScoreIsExpectedClassValue(t *testing.T) {
	env := store.NewMemoryEnvStore()
	scorer := &fixedScorer{classes: []int{1, 2, 3, 4, 5}, probs: []float64{0, 0.5, 0, 0.5, 0}}
	orch := newOrchestrator(env, scorer, domain.TargetRisk)

	uf, err := orch.ForecastUser(context.Background(), testUser(), 1, day("2026-02-09"))
	require.NoError(t, err)

	assert.InDelta(t, 3.0, uf.Days[0].Score, 1e-9)
	assert.InDelta(t, 0.5, uf.Days[0].Probability, 1e-9)
	assert.Equal(t, domain.TierModerate, uf.Days[0].Tier)
}

func TestForecastUser_InvalidUserIsComputeError(t *testing.T) {
	env := store.NewMemoryEnvStore()
	orch := newOrchestrator(env, &fixedScorer{classes: []int{0, 1}, probs: []float64{1, 0}}, domain.TargetFlare)

	bad := testUser()
	bad.CheckIns = append(bad.CheckIns, domain.CheckIn{Date: day("2026-02-09"), Wheeze: 9})

	_, err := orch.ForecastUser(context.Background(), bad, 7, day("2026-02-09"))
	var userErr *UserComputeError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "user-1", userErr.UserID)
}

func TestForecastUser_NonPositiveDays(t *testing.T) {
	env := store.NewMemoryEnvStore()
	orch := newOrchestrator(env, &fixedScorer{classes: []int{0, 1}, probs: []float64{1, 0}}, domain.TargetFlare)

	_, err := orch.ForecastUser(context.Background(), testUser(), 0, day("2026-02-09"))
	assert.Error(t, err)
}

func TestForecastUser_CancelledContext(t *testing.T) {
	env := store.NewMemoryEnvStore()
	orch := newOrchestrator(env, &fixedScorer{classes: []int{0, 1}, probs: []float64{1, 0}}, domain.TargetFlare)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.ForecastUser(ctx, testUser(), 7, day("2026-02-09"))
	assert.ErrorIs(t, err, context.Canceled)
}
