package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Football data provider API
	FootballDataAPIKey  string        `envconfig:"FOOTBALL_DATA_API_KEY" required:"true"`
	FootballDataBaseURL string        `envconfig:"FOOTBALL_DATA_BASE_URL" default:"https://api.football-data.org/v4"`
	FootballDataTimeout time.Duration `envconfig:"FOOTBALL_DATA_TIMEOUT" default:"30s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"footdata"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"footdata_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Sync workflow
	// SupportedCompetitionIDs is the set of competitions the worker keeps in
	// sync. The defaults cover the competitions available on the provider's
	// free tier.
	SupportedCompetitionIDs []int         `envconfig:"SUPPORTED_COMPETITION_IDS" default:"2000,2001,2002,2014,2015,2019,2021"`
	SyncCron                string        `envconfig:"SYNC_CRON" default:"0 * * * *"`
	EnableScheduler         bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	RunOnStart              bool          `envconfig:"RUN_ON_START" default:"false"`
	FullRefreshHourUTC      int           `envconfig:"FULL_REFRESH_HOUR_UTC" default:"5"`
	SyncBatchSize           int           `envconfig:"SYNC_BATCH_SIZE" default:"5"`
	InterBatchWait          time.Duration `envconfig:"INTER_BATCH_WAIT" default:"60s"`
	ActivityMaxAttempts     int           `envconfig:"ACTIVITY_MAX_ATTEMPTS" default:"3"`
	ActivityRetryInterval   time.Duration `envconfig:"ACTIVITY_RETRY_INTERVAL" default:"20s"`

	// Caching TTL (in seconds)
	CacheTTLCompetitions int `envconfig:"CACHE_TTL_COMPETITIONS" default:"86400"` // 24 hours

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.FootballDataAPIKey == "" {
		return fmt.Errorf("FOOTBALL_DATA_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if len(c.SupportedCompetitionIDs) == 0 {
		return fmt.Errorf("SUPPORTED_COMPETITION_IDS must not be empty")
	}

	if c.SyncBatchSize < 1 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be at least 1")
	}

	if c.FullRefreshHourUTC < 0 || c.FullRefreshHourUTC > 23 {
		return fmt.Errorf("FULL_REFRESH_HOUR_UTC must be between 0 and 23")
	}

	if c.ActivityMaxAttempts < 1 {
		return fmt.Errorf("ACTIVITY_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
