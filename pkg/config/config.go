package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (history store; disabled when URL is empty)
	Database DatabaseConfig

	// Redis (evaluation cache + API rate limiter)
	Redis RedisConfig

	// Scoring
	Scoring ScoringConfig

	// Ingest limits
	Ingest IngestConfig

	// Remote CSV fetching
	Fetch FetchConfig

	// Periodic rescoring
	Scheduler SchedulerConfig

	// API rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a history database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ScoringConfig controls base weights, role blending and result caching
type ScoringConfig struct {
	WeightsFile string  // optional YAML weight vector; empty means equal weights
	Alpha       float64 // default base-score share for role scores
	CacheTTL    time.Duration
	CacheSize   int
}

// IngestConfig bounds what the service accepts
type IngestConfig struct {
	MaxUploadMB int
}

// MaxUploadBytes returns the upload limit in bytes
func (i IngestConfig) MaxUploadBytes() int64 {
	return int64(i.MaxUploadMB) << 20
}

// FetchConfig controls remote CSV downloads
type FetchConfig struct {
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxRetries        int
}

// SchedulerConfig controls the rescoring job
type SchedulerConfig struct {
	WatchDir        string
	RescoreSchedule string // cron spec with seconds field
	Recursive       bool
}

// RateLimitConfig controls the evaluation upload limiter
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// Load reads configuration from environment variables
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Scoring: ScoringConfig{
			WeightsFile: getEnv("DQS_WEIGHTS_FILE", ""),
			Alpha:       getEnvAsFloat("DQS_ALPHA", 0.6),
			CacheTTL:    getEnvAsDuration("DQS_CACHE_TTL", "10m"),
			CacheSize:   getEnvAsInt("DQS_CACHE_SIZE", 256),
		},

		Ingest: IngestConfig{
			MaxUploadMB: getEnvAsInt("DQS_MAX_UPLOAD_MB", 50),
		},

		Fetch: FetchConfig{
			RequestsPerSecond: getEnvAsFloat("DQS_FETCH_RPS", 2),
			Timeout:           getEnvAsDuration("DQS_FETCH_TIMEOUT", "30s"),
			MaxRetries:        getEnvAsInt("DQS_FETCH_RETRIES", 3),
		},

		Scheduler: SchedulerConfig{
			WatchDir:        getEnv("DQS_WATCH_DIR", ""),
			RescoreSchedule: getEnv("DQS_RESCORE_SCHEDULE", "0 0 * * * *"),
			Recursive:       getEnvAsBool("DQS_WATCH_RECURSIVE", true),
		},

		RateLimit: RateLimitConfig{
			Limit:  getEnvAsInt("DQS_RATE_LIMIT", 30),
			Window: getEnvAsDuration("DQS_RATE_WINDOW", "1m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFrom loads an explicit .env file before reading the environment.
// Variables already set in the environment win.
func LoadFrom(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scoring.Alpha < 0 || c.Scoring.Alpha > 1 {
		return fmt.Errorf("DQS_ALPHA must be within [0, 1], got %v", c.Scoring.Alpha)
	}

	if c.Scoring.CacheSize <= 0 {
		return fmt.Errorf("DQS_CACHE_SIZE must be positive")
	}

	if c.Ingest.MaxUploadMB <= 0 {
		return fmt.Errorf("DQS_MAX_UPLOAD_MB must be positive")
	}

	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("DQS_FETCH_RPS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
