package config

import (
	"os"
	"strconv"
	"time"
)

type UpstreamConfig struct {
	BaseURL     string
	Timeout     time.Duration
	RetryCount  int
	RetryWait   time.Duration
	BearerToken string
}

type CacheConfig struct {
	// TTL bounds staleness of a collection slot. Tunable, not a protocol
	// requirement.
	TTL     time.Duration
	Backend string // "memory" or "redis"
}

type LedgerConfig struct {
	// Days added to CreatedDate when the backend omits a due date.
	DueDays int
}

type Config struct {
	Upstream  UpstreamConfig
	Cache     CacheConfig
	Ledger    LedgerConfig
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:     getEnv("UPSTREAM_BASE_URL", "http://localhost:9000"),
			Timeout:     getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
			RetryCount:  getEnvAsInt("UPSTREAM_RETRY_COUNT", 2),
			RetryWait:   getEnvAsDuration("UPSTREAM_RETRY_WAIT", 500*time.Millisecond),
			BearerToken: getEnv("UPSTREAM_BEARER_TOKEN", ""),
		},
		Cache: CacheConfig{
			TTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			Backend: getEnv("CACHE_BACKEND", "memory"),
		},
		Ledger: LedgerConfig{
			DueDays: getEnvAsInt("LEDGER_DUE_DAYS", 30),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
