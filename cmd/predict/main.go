// Command predict runs one batch forecast against the configured stores and
// writes the results as a JSON array, one object per (user, date). It is the
// process-boundary entry point for callers that consume forecasts via
// stdout instead of the HTTP surface.
//
// Usage:
//
//	go run ./cmd/predict -out - -model model.json -days 7 -target risk
//
// Exit code 0 with a JSON array on success; any non-zero exit signals failure
// to the caller.
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
	"github.com/couchcryptid/asthma-forecast-service/internal/forecast"
	"github.com/couchcryptid/asthma-forecast-service/internal/model"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
	"github.com/couchcryptid/asthma-forecast-service/internal/store"
)

// outputRow matches the process-boundary JSON contract: exactly one of risk
// or flare_day is present, matching the requested target.
type outputRow struct {
	UserID      string   `json:"user_id"`
	Date        string   `json:"date"`
	Risk        *float64 `json:"risk,omitempty"`
	FlareDay    *float64 `json:"flare_day,omitempty"`
	Probability float64  `json:"probability"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "predict:", err)
		os.Exit(1)
	}
}

func run() error {
	out := flag.String("out", "-", "output path, or - for stdout")
	modelPath := flag.String("model", "", "model artifact path (defaults to MODEL_PATH)")
	days := flag.Int("days", 7, "forecast window length in days")
	target := flag.String("target", "", "prediction target: risk or flare_day (defaults to TARGET)")
	minUsers := flag.Int("min-users", 1, "minimum qualifying users, fewer aborts the run")
	refDate := flag.String("reference-date", "", "first forecast day as YYYY-MM-DD (defaults to today)")
	noCache := flag.Bool("no-cache", false, "recompute even when the prediction cache is complete")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *target != "" {
		if !domain.ValidTarget(*target) {
			return fmt.Errorf("target must be risk or flare_day, got %q", *target)
		}
		cfg.Target = *target
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	scorer, err := model.Load(cfg.ModelPath)
	if err != nil {
		return err
	}
	if scorer.Target() != cfg.Target {
		return fmt.Errorf("model artifact targets %s, requested %s", scorer.Target(), cfg.Target)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BatchTimeout)
	defer cancel()

	db, err := mongoadapter.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(context.Background()) //nolint:errcheck // best-effort disconnect

	envStore := store.NewCachedEnvStore(db.Environmental(), cfg.EnvCacheSize, nil, nil)
	orch := forecast.NewOrchestrator(envStore, scorer, cfg.Target, cfg.DefaultLocation, logger, metrics)
	runner := forecast.NewRunner(db.Users(), db.Predictions(), orch, nil, cfg.WorkerPoolSize, logger, metrics)

	req := forecast.Request{
		Days:           *days,
		MinUsers:       *minUsers,
		ForceRecompute: *noCache,
	}
	if *refDate != "" {
		ref, err := domain.ParseDay(*refDate)
		if err != nil {
			return fmt.Errorf("reference-date must be YYYY-MM-DD: %w", err)
		}
		req.ReferenceDate = ref
	}

	result, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}

	rows := toRows(result, cfg.Target)
	return writeRows(*out, rows)
}

func toRows(result forecast.BatchResult, target string) []outputRow {
	rows := make([]outputRow, 0, len(result.Forecasts)*7)
	for _, uf := range result.Forecasts {
		for _, day := range uf.Days {
			row := outputRow{
				UserID:      uf.UserID,
				Date:        day.Date,
				Probability: day.Probability,
			}
			score := day.Score
			if target == domain.TargetFlare {
				row.FlareDay = &score
			} else {
				row.Risk = &score
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func writeRows(out string, rows []outputRow) error {
	data, err := json.MarshalIndent(rows, "", "  ")
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
