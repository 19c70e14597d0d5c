package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	MongoURI                string
	MongoDatabase           string
	UsersCollection         string
	EnvironmentalCollection string
	PredictionsCollection   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	Environment     string
	ShutdownTimeout time.Duration

	WorkerPoolSize int
	BatchTimeout   time.Duration

	ModelPath       string
	Target          string
	DefaultLocation string
	EnvCacheSize    int

	// Kafka prediction-event publishing configuration.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool

	// Boundary HTTP rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// IsDevelopment reports whether the service runs with development
// diagnostics, which include failure reasons in boundary responses.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// GetLogLevel returns the configured log level for logger construction.
func (c *Config) GetLogLevel() string { return c.LogLevel }

// GetLogFormat returns the configured log format for logger construction.
func (c *Config) GetLogFormat() string { return c.LogFormat }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchTimeout, err := parseDuration("BATCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	workers, err := parsePositiveInt("WORKER_POOL_SIZE", 8, 256)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("ENV_CACHE_SIZE", 1000, 1_000_000)
	if err != nil {
		return nil, err
	}

	rps, err := parsePositiveFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}

	burst, err := parsePositiveInt("RATE_LIMIT_BURST", 20, 10_000)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		MongoURI:                envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:           envOrDefault("MONGODB_DATABASE", "asthma_forecast"),
		UsersCollection:         envOrDefault("USERS_COLLECTION", "users"),
		EnvironmentalCollection: envOrDefault("ENVIRONMENTAL_COLLECTION", "environmental_daily"),
		PredictionsCollection:   envOrDefault("PREDICTIONS_COLLECTION", "predictions"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		Environment:     envOrDefault("ENVIRONMENT", "production"),
		ShutdownTimeout: shutdownTimeout,

		WorkerPoolSize: workers,
		BatchTimeout:   batchTimeout,

		ModelPath:       envOrDefault("MODEL_PATH", "model.json"),
		Target:          envOrDefault("TARGET", "risk"),
		DefaultLocation: envOrDefault("DEFAULT_LOCATION", "unknown"),
		EnvCacheSize:    cacheSize,

		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "asthma-predictions"),
		KafkaEnabled:   kafkaEnabled,

		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI is required")
	}
	if cfg.MongoDatabase == "" {
		return nil, errors.New("MONGODB_DATABASE is required")
	}
	if cfg.Target != "risk" && cfg.Target != "flare_day" {
		return nil, fmt.Errorf("TARGET must be risk or flare_day, got %q", cfg.Target)
	}
	if cfg.Environment != "development" && cfg.Environment != "production" {
		return nil, fmt.Errorf("ENVIRONMENT must be development or production, got %q", cfg.Environment)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def, max int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > max {
		return 0, fmt.Errorf("invalid %s: must be 1..%d", key, max)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return f, nil
}
