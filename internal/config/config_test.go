package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-interpolate/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.CacheCapacity)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.CacheSweep)
	assert.Equal(t, 5*time.Second, cfg.EvalTimeout)
	assert.Equal(t, "moderate", cfg.SecurityLevel)
	assert.False(t, cfg.DollarSyntax)
	assert.Equal(t, "en", cfg.Culture)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("INTERP_CACHE_CAPACITY", "50")
	t.Setenv("INTERP_CACHE_TTL", "30m")
	t.Setenv("INTERP_EVAL_TIMEOUT", "250ms")
	t.Setenv("INTERP_SECURITY_LEVEL", "permissive")
	t.Setenv("INTERP_DOLLAR_SYNTAX", "true")
	t.Setenv("INTERP_CULTURE", "de-DE")
	t.Setenv("INTERP_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.CacheCapacity)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.EvalTimeout)
	assert.Equal(t, "permissive", cfg.SecurityLevel)
	assert.True(t, cfg.DollarSyntax)
	assert.Equal(t, "de-DE", cfg.Culture)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero capacity", "INTERP_CACHE_CAPACITY", "0"},
		{"negative ttl", "INTERP_CACHE_TTL", "-1h"},
		{"zero timeout", "INTERP_EVAL_TIMEOUT", "0s"},
		{"unknown security level", "INTERP_SECURITY_LEVEL", "paranoid"},
		{"unknown log level", "INTERP_LOG_LEVEL", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.String(), "SecurityLevel=moderate")
}
