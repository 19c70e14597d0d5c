// Package http exposes the boundary surface: health, readiness, metrics, and
// the forecast endpoint. Pipeline errors never reach the consumer raw; failed
// runs are answered with clearly-marked estimated placeholder data.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
	"github.com/couchcryptid/asthma-forecast-service/internal/forecast"
	"github.com/couchcryptid/asthma-forecast-service/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// BatchRunner executes a forecast batch. Implemented by forecast.Runner.
type BatchRunner interface {
	Run(ctx context.Context, req forecast.Request) (forecast.BatchResult, error)
}

// Options carries the boundary behavior knobs from config.
type Options struct {
	Target       string
	BatchTimeout time.Duration
	RateLimit    *rate.Limiter
	Development  bool
}

// Server exposes health, readiness, metrics, and forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	runner     BatchRunner
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /v1/forecast routes.
func NewServer(addr string, runner BatchRunner, ready ReadinessChecker, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		runner:  runner,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/forecast", s.handleForecast)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, "/healthz", http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			s.writeJSON(w, "/readyz", http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		s.writeJSON(w, "/readyz", http.StatusOK, map[string]string{"status": "ready"})
	}
}

// forecastRequest is the boundary request body. All fields are optional.
type forecastRequest struct {
	UserIDs        []string `json:"user_ids,omitempty"`
	Days           int      `json:"days,omitempty"`
	ReferenceDate  string   `json:"reference_date,omitempty"`
	ForceRecompute bool     `json:"force_recompute,omitempty"`
}

// forecastDay is one output record. Exactly one of Risk or FlareDay is set,
// matching the configured target.
type forecastDay struct {
	UserID      string   `json:"user_id"`
	Date        string   `json:"date"`
	Risk        *float64 `json:"risk,omitempty"`
	FlareDay    *float64 `json:"flare_day,omitempty"`
	Probability float64  `json:"probability"`
	Tier        string   `json:"tier"`
	Degraded    bool     `json:"degraded,omitempty"`
	Estimated   bool     `json:"estimated,omitempty"`
}

type forecastResponse struct {
	Records   []forecastDay          `json:"records"`
	Skipped   []forecast.SkippedUser `json:"skipped,omitempty"`
	FromCache bool                   `json:"from_cache,omitempty"`
	Estimated bool                   `json:"estimated,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	const route = "/v1/forecast"

	if s.opts.RateLimit != nil && !s.opts.RateLimit.Allow() {
		s.metrics.RequestsLimited.Inc()
		s.writeJSON(w, route, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	var body forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, route, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	req := forecast.Request{
		UserIDs:        body.UserIDs,
		Days:           body.Days,
		ForceRecompute: body.ForceRecompute,
	}
	if body.ReferenceDate != "" {
		ref, err := domain.ParseDay(body.ReferenceDate)
		if err != nil {
			s.writeJSON(w, route, http.StatusBadRequest, map[string]string{"error": "reference_date must be YYYY-MM-DD"})
			return
		}
		req.ReferenceDate = ref
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.BatchTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, req)
	if err != nil {
		// The consumer never sees a hard failure: substitute deterministic
		// placeholder data and flag it estimated.
		s.logger.Error("forecast run failed, serving estimated placeholders", "error", err)
		resp := s.placeholderResponse(body, err)
		s.writeJSON(w, route, http.StatusOK, resp)
		return
	}

	s.writeJSON(w, route, http.StatusOK, s.toResponse(result))
}

func (s *Server) toResponse(result forecast.BatchResult) forecastResponse {
	resp := forecastResponse{
		Records:   make([]forecastDay, 0, len(result.Forecasts)*7),
		Skipped:   result.Skipped,
		FromCache: result.FromCache,
	}
	for _, uf := range result.Forecasts {
		for _, day := range uf.Days {
			resp.Records = append(resp.Records, s.record(uf.UserID, day.Date, day.Score, day.Probability, day.Tier, day.Degraded, false))
		}
	}
	return resp
}

// placeholderResponse synthesizes a stable substitute window when the run
// fails. Scores derive from the date alone so repeated calls return identical
// data. One series is emitted per requested user ID; a request without
// explicit user_ids gets an empty estimated window, since the handler cannot
// know the user population when the pipeline behind it is down. The failure
// reason is exposed only in development.
func (s *Server) placeholderResponse(body forecastRequest, runErr error) forecastResponse {
	days := body.Days
	if days <= 0 {
		days = 7
	}
	start, err := domain.ParseDay(body.ReferenceDate)
	if err != nil {
		start, _ = domain.ParseDay(domain.Today())
	}

	resp := forecastResponse{Records: []forecastDay{}, Estimated: true}
	if s.opts.Development {
		resp.Reason = runErr.Error()
	}
	for _, userID := range body.UserIDs {
		for i := 0; i < days; i++ {
			date := start.AddDate(0, 0, i)
			score := placeholderScore(date)
			resp.Records = append(resp.Records,
				s.record(userID, domain.DayKey(date), score, (score-1)/4, domain.TierFor(score), true, true))
		}
	}
	return resp
}

// placeholderScore maps a date onto [1,5] using only its day-of-year, so the
// substitute data is deterministic per date.
func placeholderScore(date time.Time) float64 {
	return 1 + 4*float64(date.YearDay()%7)/7
}

func (s *Server) record(userID, date string, score, probability float64, tier domain.RiskTier, degraded, estimated bool) forecastDay {
	rec := forecastDay{
		UserID:      userID,
		Date:        date,
		Probability: probability,
		Tier:        string(tier),
		Degraded:    degraded,
		Estimated:   estimated,
	}
	if s.opts.Target == domain.TargetFlare {
		rec.FlareDay = &score
	} else {
		rec.Risk = &score
	}
	return rec
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
