// Command seed generates deterministic demo data: user profiles with gappy
// check-in histories, daily environmental rows covering the recent past plus
// a forecast week, and optionally a small model artifact. The same seed always
// produces the same documents, so local environments and demos are
// reproducible.
//
// Usage:
//
//	go run ./cmd/seed -users 25 -days 60 -model model.json
//	go run ./cmd/seed -dry-run
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	mongoadapter "github.com/couchcryptid/asthma-forecast-service/internal/adapter/mongo"
	"github.com/couchcryptid/asthma-forecast-service/internal/config"
	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/feature"
	"github.com/couchcryptid/asthma-forecast-service/internal/model"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

// heightForms and weightForms cycle through the free-form profile inputs the
// parser accepts, plus one unparsable value to exercise the missing-BMI path.
var heightForms = []string{"5'10\"", "6'1\"", "170 cm", "5 ft", "68 in", "1.8 m", "tall"}
var weightForms = []string{"170 lbs", "82 kg", "145 lb", "200", "90kg", "", "heavy"}

var severities = []string{"none", "mild", "moderate", "severe"}

var zips = []string{"60601", "94103", "10001", "30301", "80202"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	users := flag.Int("users", 25, "number of demo users")
	days := flag.Int("days", 60, "days of check-in and environmental history")
	seedVal := flag.Int64("seed", 42, "PRNG seed")
	modelOut := flag.String("model", "", "also write a demo model artifact to this path")
	dryRun := flag.Bool("dry-run", false, "generate into in-memory stores and print counts instead of writing to MongoDB")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)

	rng := rand.New(rand.NewSource(*seedVal))
	end, _ := domain.ParseDay(domain.Today())

	demoUsers := genUsers(rng, *users, *days, end)
	envRows := genEnvRows(rng, demoUsers, *days, end, cfg.DefaultLocation)

	if *modelOut != "" {
		if err := writeDemoArtifact(*modelOut); err != nil {
			return err
		}
		logger.Info("demo model artifact written", "path", *modelOut)
	}

	if *dryRun {
		userStore := store.NewMemoryUserStore()
		envStore := store.NewMemoryEnvStore()
		for _, u := range demoUsers {
			userStore.Add(u)
		}
		for _, rec := range envRows {
			envStore.Put(rec)
		}
		logger.Info("dry run complete", "users", len(demoUsers), "environmental_rows", len(envRows))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := mongoadapter.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(context.Background()) //nolint:errcheck // best-effort disconnect

	for _, u := range demoUsers {
		if err := db.Users().UpsertUser(ctx, u); err != nil {
			return err
		}
	}
	for _, rec := range envRows {
		if err := db.Environmental().UpsertDaily(ctx, rec); err != nil {
			return err
		}
	}
	logger.Info("seed complete", "users", len(demoUsers), "environmental_rows", len(envRows))
	return nil
}

// genUsers builds users with varied location forms and gappy check-in
// histories: roughly four check-ins out of five days, so lag and anchor
// handling sees realistic holes.
func genUsers(rng *rand.Rand, n, days int, end time.Time) []domain.User {
	users := make([]domain.User, 0, n)
	for i := 0; i < n; i++ {
		profile := domain.Profile{
			Height:         heightForms[i%len(heightForms)],
			Weight:         weightForms[i%len(weightForms)],
			Age:            18 + rng.Intn(60),
			AsthmaSeverity: severities[rng.Intn(len(severities))],
		}
		// Alternate between ZIP-coded and coordinate-coded profiles; leave a
		// few with no location to exercise the default-location fallback.
		switch i % 3 {
		case 0:
			profile.ZipCode = zips[i%len(zips)]
		case 1:
			lat := 41.8 + rng.Float64()
			lon := -87.6 - rng.Float64()
			profile.Latitude = &lat
			profile.Longitude = &lon
		}

		baseline := rng.Intn(3)
		var checkins []domain.CheckIn
		for d := days; d >= 1; d-- {
			if rng.Float64() > 0.8 {
				continue
			}
			date := end.AddDate(0, 0, -d)
			checkins = append(checkins, domain.CheckIn{
				Date:            date,
				Wheeze:          clampSym(baseline + rng.Intn(3) - 1),
				Cough:           clampSym(rng.Intn(4)),
				ChestTightness:  clampSym(baseline + rng.Intn(2) - 1),
				ExerciseMinutes: rng.Intn(90),
			})
		}

		users = append(users, domain.User{
			ID:       fmt.Sprintf("user-%03d", i+1),
			Profile:  profile,
			CheckIns: checkins,
		})
	}
	return users
}

// genEnvRows covers every distinct user location for the history window plus
// the next seven forecast days, with a few random gaps so the degraded path
// gets exercised.
func genEnvRows(rng *rand.Rand, users []domain.User, days int, end time.Time, defaultLocation string) []domain.EnvironmentalRecord {
	locations := map[string]struct{}{defaultLocation: {}}
	for _, u := range users {
		locations[domain.ProfileLocationID(u.Profile, defaultLocation)] = struct{}{}
	}

	var rows []domain.EnvironmentalRecord
	for loc := range locations {
		for d := -days; d <= 7; d++ {
			if d > 0 && rng.Float64() < 0.15 {
				continue // forecast gap
			}
			date := end.AddDate(0, 0, d)
			rec := domain.EnvironmentalRecord{
				LocationID: loc,
				Date:       domain.DayKey(date),
				AQI:        20 + rng.Float64()*120,
				PM25Mean:   5 + rng.Float64()*40,
				PM25Max:    10 + rng.Float64()*60,
				TempMin:    30 + rng.Float64()*40,
				TempMax:    50 + rng.Float64()*45,
				Humidity:   0.2 + rng.Float64()*0.7,
				Wind:       rng.Float64() * 25,
				Rain:       rng.Float64() * 0.5,
				Pressure:   990 + rng.Float64()*40,
			}
			// Pollen coverage is spottier than weather coverage.
			if rng.Float64() < 0.7 {
				tree := rng.Float64() * 15
				grass := rng.Float64() * 10
				weed := rng.Float64() * 8
				rec.PollenTree = &tree
				rec.PollenGrass = &grass
				rec.PollenWeed = &weed
			}
			rows = append(rows, domain.FillCalendar(rec))
		}
	}
	return rows
}

func clampSym(v int) int {
	if v < 0 {
		return 0
	}
	if v > 3 {
		return 3
	}
	return v
}

// writeDemoArtifact emits a tiny hand-built risk artifact: one stump per
// class splitting on AQI, enough to produce varied scores over seeded data.
// Real artifacts come from the offline trainer; this one only backs demos.
func writeDemoArtifact(path string) error {
	layout := feature.Layout()
	aqiIndex := 0
	for i, name := range layout {
		if name == "AQI" {
			aqiIndex = i
			break
		}
	}

	type nodeJSON struct {
		Feature   int     `json:"feature"`
		Threshold float64 `json:"threshold"`
		Left      int     `json:"left"`
		Right     int     `json:"right"`
		Value     float64 `json:"value"`
	}
	type treeJSON struct {
		ClassIndex int        `json:"class_index"`
		Nodes      []nodeJSON `json:"nodes"`
	}

	stump := func(classIndex int, threshold, below, above float64) treeJSON {
		return treeJSON{
			ClassIndex: classIndex,
			Nodes: []nodeJSON{
				{Feature: aqiIndex, Threshold: threshold, Left: 1, Right: 2},
				{Feature: -1, Left: -1, Right: -1, Value: below},
				{Feature: -1, Left: -1, Right: -1, Value: above},
			},
		}
	}

	artifact := map[string]any{
		"schema_version": model.SchemaVersion,
		"layout_version": feature.LayoutVersion,
		"target":         domain.TargetRisk,
		"feature_names":  layout,
		"classes":        []int{1, 2, 3, 4, 5},
		"base_scores":    []float64{0.4, 0.3, 0.2, 0.1, 0.0},
		"trees": []treeJSON{
			stump(0, 50, 1.2, -0.8),
			stump(1, 70, 0.6, -0.3),
			stump(2, 90, -0.2, 0.5),
			stump(3, 110, -0.6, 0.9),
			stump(4, 130, -1.0, 1.4),
		},
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
