package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	// Reference zones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// Store backends
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Env string

	// Source
	SourceBaseURL string
	TopN          int
	ReferenceTZ   string
	HTTPTimeout   time.Duration
	UserAgent     string

	// Pipeline
	ProfileConcurrency int
	CronSchedule       string
	CycleMaxAttempts   int
	CycleRetryDelay    time.Duration
	CycleTimeout       time.Duration

	// Persistence
	Store       string
	OutputDir   string
	RedisURL    string
	RedisPrefix string
	HTMLDump    bool

	// API
	ListenAddr string
}

// Load loads configuration from environment variables.
// It returns an error if a value is invalid or a required one is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "production"),

		SourceBaseURL: getEnv("SOURCE_BASE_URL", "https://www.espn.com/tennis"),
		TopN:          getEnvInt("TOP_N", 100),
		ReferenceTZ:   getEnv("REFERENCE_TZ", "America/New_York"),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		UserAgent:     getEnv("USER_AGENT", ""),

		ProfileConcurrency: getEnvInt("PROFILE_CONCURRENCY", 1),
		CronSchedule:       getEnv("CRON_SCHEDULE", "0 */3 * * *"),
		CycleMaxAttempts:   getEnvInt("CYCLE_MAX_ATTEMPTS", 3),
		CycleRetryDelay:    getEnvDuration("CYCLE_RETRY_DELAY", 30*time.Second),
		CycleTimeout:       getEnvDuration("CYCLE_TIMEOUT", 15*time.Minute),

		Store:       strings.ToLower(getEnv("STORE", StoreFile)),
		OutputDir:   getEnv("OUTPUT_DIR", "."),
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "tennis"),
		HTMLDump:    getEnvBool("HTML_DUMP", false),

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("missing required environment variable: REDIS_URL (STORE=redis)")
		}
	default:
		return fmt.Errorf("invalid STORE %q: want %s, %s or %s", c.Store, StoreFile, StoreRedis, StoreMemory)
	}

	if _, err := time.LoadLocation(c.ReferenceTZ); err != nil {
		return fmt.Errorf("invalid REFERENCE_TZ %q: %w", c.ReferenceTZ, err)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("invalid TOP_N %d: must be positive", c.TopN)
	}
	return nil
}

// Location returns the reference time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment reports whether ENV selects the development logger
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
