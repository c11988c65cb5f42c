package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"NODECAT_REQUEST_INTERVAL", "NODECAT_REFRESH_TIMEOUT",
		"NODECAT_LOG_LEVEL", "NODECAT_PRETTY_LOG",
	} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()
	assert.Equal(t, time.Second, cfg.RequestInterval)
	assert.Equal(t, 5*time.Minute, cfg.RefreshTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.PrettyLog)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("NODECAT_SOURCE_URL", "https://catalog.example.com")
	t.Setenv("NODECAT_REQUEST_INTERVAL", "30s")
	t.Setenv("NODECAT_LOG_LEVEL", "debug")
	t.Setenv("NODECAT_PRETTY_LOG", "true")

	cfg := NewConfig()
	assert.Equal(t, "https://catalog.example.com", cfg.SourceURL)
	assert.Equal(t, 30*time.Second, cfg.RequestInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.PrettyLog)
}

func TestNewConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("NODECAT_REQUEST_INTERVAL", "not-a-duration")
	t.Setenv("NODECAT_PRETTY_LOG", "maybe")

	cfg := NewConfig()
	assert.Equal(t, time.Second, cfg.RequestInterval)
	assert.False(t, cfg.PrettyLog)
}
