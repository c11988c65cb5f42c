package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server configuration, populated from NODECAT_* env vars
// with flag overrides applied in main.
type Config struct {
	SourceURL       string        // remote catalog source base URL; empty disables refresh
	SeedFile        string        // local YAML seed file for bootstrap without network
	SnapshotPath    string        // libsql file for last-good snapshot persistence; empty disables
	RequestInterval time.Duration // minimum interval between source requests (floor: 1s)
	RefreshTimeout  time.Duration // overall timeout for one refresh pass

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
}

// NewConfig creates a Config from environment variables.
func NewConfig() *Config {
	return &Config{
		SourceURL:       os.Getenv("NODECAT_SOURCE_URL"),
		SeedFile:        os.Getenv("NODECAT_SEED_FILE"),
		SnapshotPath:    os.Getenv("NODECAT_SNAPSHOT_PATH"),
		RequestInterval: getenvDuration("NODECAT_REQUEST_INTERVAL", time.Second),
		RefreshTimeout:  getenvDuration("NODECAT_REFRESH_TIMEOUT", 5*time.Minute),
		LogLevel:        getenv("NODECAT_LOG_LEVEL", "info"),
		PrettyLog:       getenvBool("NODECAT_PRETTY_LOG", false),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
