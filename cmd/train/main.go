// Command train exports the historical training dataset as JSON: one row per
// (user, check-in day) with the full feature vector and both derived labels.
// Model fitting itself happens offline; this command owns the join and label
// derivation so the trainer and the forecast path share one feature layout.
//
// Usage:
//
//	go run ./cmd/train -out training.json -window 90 -target risk
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	mongoadapter "github.com/couchcryptid/asthma-forecast-service/internal/adapter/mongo"
	"github.com/couchcryptid/asthma-forecast-service/internal/config"
	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/feature"
	"github.com/couchcryptid/asthma-forecast-service/internal/forecast"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
)

// dataset is the export envelope. The layout version and field names travel
// with the rows so an artifact trained on this file can be validated against
// the builder at load time.
type dataset struct {
	LayoutVersion int      `json:"layout_version"`
	FeatureNames  []string `json:"feature_names"`
	Target        string   `json:"target"`
	Rows          []row    `json:"rows"`
}

type row struct {
	UserID string    `json:"user_id"`
	Date   string    `json:"date"`
	Values []float64 `json:"values"`
	Label  int       `json:"label"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "train:", err)
		os.Exit(1)
	}
}

func run() error {
	out := flag.String("out", "-", "output path, or - for stdout")
	window := flag.Int("window", 90, "historical window in days, ending today")
	target := flag.String("target", "", "label to export: risk or flare_day (defaults to TARGET)")
	minUsers := flag.Int("min-users", 1, "minimum qualifying users, fewer aborts the export")
	flag.Parse()

	if *window <= 0 {
		return fmt.Errorf("window must be positive, got %d", *window)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *target != "" {
		if !domain.ValidTarget(*target) {
			return fmt.Errorf("target must be risk or flare_day, got %q", *target)
		}
		cfg.Target = *target
	}

	logger := observability.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BatchTimeout)
	defer cancel()

	db, err := mongoadapter.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(context.Background()) //nolint:errcheck // best-effort disconnect

	users, err := db.Users().ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) < *minUsers {
		return fmt.Errorf("%w: %d users, need at least %d", forecast.ErrDataUnavailable, len(users), *minUsers)
	}

	end, _ := domain.ParseDay(domain.Today())
	start := end.AddDate(0, 0, -*window)

	ds := dataset{
		LayoutVersion: feature.LayoutVersion,
		FeatureNames:  feature.Layout(),
		Target:        cfg.Target,
		Rows:          []row{},
	}

	envStore := db.Environmental()
	for _, user := range users {
		if err := domain.ValidateUser(user); err != nil {
			logger.Warn("skipping user in training export", "user_id", user.ID, "reason", err)
			continue
		}
		locationID := domain.ProfileLocationID(user.Profile, cfg.DefaultLocation)
		recs, err := envStore.Range(ctx, locationID, domain.DayKey(start), domain.DayKey(end))
		if err != nil {
			return err
		}
		byDay := make(map[string]domain.EnvironmentalRecord, len(recs))
		for _, rec := range recs {
			byDay[rec.Date] = rec
		}

		// One row per check-in day inside the window that has a real
		// environmental record; estimated rows would poison training.
		for _, ci := range user.CheckIns {
			day := domain.DayKey(ci.Date)
			rec, ok := byDay[day]
			if !ok {
				continue
			}
			date, err := domain.ParseDay(day)
			if err != nil {
				continue
			}
			tr := feature.BuildTrainingRow(user.ID, user.Profile, user.CheckIns, rec, date)
			label := tr.Risk
			if cfg.Target == domain.TargetFlare {
				label = tr.Flare
			}
			ds.Rows = append(ds.Rows, row{
				UserID: tr.UserID,
				Date:   tr.Date,
				Values: tr.Values,
				Label:  label,
			})
		}
	}

	if len(ds.Rows) == 0 {
		return fmt.Errorf("%w: no training rows in the last %d days", forecast.ErrDataUnavailable, *window)
	}
	logger.Info("training export complete", "rows", len(ds.Rows), "users", len(users), "window_days", *window)

	return writeDataset(*out, ds)
}

func writeDataset(out string, ds dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if out == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
