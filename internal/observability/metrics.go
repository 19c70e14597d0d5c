package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast pipeline.
type Metrics struct {
	UsersForecast   prometheus.Counter
	UsersSkipped    prometheus.Counter
	DaysDegraded    prometheus.Counter
	BatchDuration   prometheus.Histogram
	BatchRunning    prometheus.Gauge
	CacheServes     prometheus.Counter
	EventsPublished prometheus.Counter

	// Environmental read cache.
	EnvCache *prometheus.CounterVec // labels: result={hit,miss}

	// Boundary HTTP surface.
	HTTPRequests    *prometheus.CounterVec // labels: route, code
	RequestsLimited prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UsersForecast,
		m.UsersSkipped,
		m.DaysDegraded,
		m.BatchDuration,
		m.BatchRunning,
		m.CacheServes,
		m.EventsPublished,
		m.EnvCache,
		m.HTTPRequests,
		m.RequestsLimited,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UsersForecast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "users_forecast_total",
			Help:      "Users whose forecast completed in a batch run.",
		}),
		UsersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "users_skipped_total",
			Help:      "Users skipped due to unparsable profile or check-in data.",
		}),
		DaysDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "days_degraded_total",
			Help:      "Forecast days served from an estimated environmental row.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "asthma_forecast",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete all-users forecast batch.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asthma_forecast",
			Name:      "batch_running",
			Help:      "1 while a forecast batch is in flight.",
		}),
		CacheServes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "cache_serves_total",
			Help:      "Batch requests answered entirely from the prediction cache.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "events_published_total",
			Help:      "Prediction events published to the sink topic.",
		}),
		EnvCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "env_cache_total",
			Help:      "Environmental row cache lookups by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "http_requests_total",
			Help:      "Boundary HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		RequestsLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asthma_forecast",
			Name:      "requests_limited_total",
			Help:      "Boundary HTTP requests rejected by the rate limiter.",
		}),
	}
}
