package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int

	CDOBaseURL string
	CDOToken   string

	// Station search
	PageCap          int
	MaxAttempts      int
	InitialHalfWidth float64
	RetryDelay       time.Duration
	DataCategory     string
	StationStartDate string

	// Bulk runs
	Workers           int
	RequestsPerSecond float64

	// Tables
	DataDir     string
	TableBucket string
	TablePrefix string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithCDOToken(token string) Option {
	return func(c *Config) {
		c.CDOToken = token
	}
}

func WithCDOBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.CDOBaseURL = baseURL
	}
}

// WithSearch overrides the page cap and attempt budget of the station search.
func WithSearch(pageCap, maxAttempts int) Option {
	return func(c *Config) {
		if pageCap > 0 {
			c.PageCap = pageCap
		}
		if maxAttempts > 0 {
			c.MaxAttempts = maxAttempts
		}
	}
}

func WithRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

func WithWorkers(workers int) Option {
	return func(c *Config) {
		if workers > 0 {
			c.Workers = workers
		}
	}
}

func WithRequestsPerSecond(rps float64) Option {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

func WithTableBucket(bucket string) Option {
	return func(c *Config) {
		c.TableBucket = bucket
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:       "production",
		LogLevel:          zerolog.InfoLevel,
		HTTPTimeout:       5 * time.Second,
		MaxRetries:        3,
		CDOBaseURL:        "https://www.ncei.noaa.gov/cdo-web/api/v2",
		PageCap:           25,
		MaxAttempts:       10,
		InitialHalfWidth:  0.5,
		RetryDelay:        time.Second,
		DataCategory:      "TEMP",
		StationStartDate:  "2025-04-28",
		Workers:           1,
		RequestsPerSecond: 4,
		DataDir:           "data",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
}

// LoadFromEnv loads configuration from environment variables. Options in
// overrides are applied last.
func LoadFromEnv(overrides ...Option) *Config {
	opts := []Option{
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 5*time.Second)),
		WithCDOBaseURL(getEnvOrDefault("CDO_BASE_URL", "https://www.ncei.noaa.gov/cdo-web/api/v2")),
		WithCDOToken(os.Getenv("CDO_TOKEN")),
		WithSearch(getEnvInt("STATION_PAGE_CAP", 25), getEnvInt("STATION_MAX_ATTEMPTS", 10)),
		WithRetryDelay(getDurationEnvOrDefault("STATION_RETRY_DELAY", time.Second)),
		WithWorkers(getEnvInt("WORKERS", 1)),
		WithRequestsPerSecond(getFloatEnvOrDefault("CDO_REQUESTS_PER_SECOND", 4)),
		WithDataDir(getEnvOrDefault("DATA_DIR", "data")),
		WithTableBucket(os.Getenv("TABLE_BUCKET")),
		WithTablePrefix(os.Getenv("TABLE_PREFIX")),
	}
	return New(append(opts, overrides...)...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultValue
}
