package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the engine defaults, loadable from environment variables.
type Config struct {
	// Cache configuration
	CacheCapacity int           `env:"INTERP_CACHE_CAPACITY" envDefault:"1000"`
	CacheTTL      time.Duration `env:"INTERP_CACHE_TTL" envDefault:"1h"`
	CacheSweep    time.Duration `env:"INTERP_CACHE_SWEEP" envDefault:"10m"`

	// Evaluation configuration
	EvalTimeout   time.Duration `env:"INTERP_EVAL_TIMEOUT" envDefault:"5s"`
	SecurityLevel string        `env:"INTERP_SECURITY_LEVEL" envDefault:"moderate"`
	DollarSyntax  bool          `env:"INTERP_DOLLAR_SYNTAX" envDefault:"false"`
	Culture       string        `env:"INTERP_CULTURE" envDefault:"en"`

	// Logging configuration
	LogLevel string `env:"INTERP_LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("INTERP_CACHE_CAPACITY must be positive")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("INTERP_CACHE_TTL must be positive")
	}

	if c.EvalTimeout <= 0 {
		return fmt.Errorf("INTERP_EVAL_TIMEOUT must be positive")
	}

	if !isValidSecurityLevel(c.SecurityLevel) {
		return fmt.Errorf("INTERP_SECURITY_LEVEL must be one of: strict, moderate, permissive")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("INTERP_LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidSecurityLevel checks if the security level is valid.
func isValidSecurityLevel(level string) bool {
	validLevels := map[string]bool{
		"strict":     true,
		"moderate":   true,
		"permissive": true,
	}
	return validLevels[level]
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{CacheCapacity=%d, CacheTTL=%s, CacheSweep=%s, EvalTimeout=%s, "+
			"SecurityLevel=%s, DollarSyntax=%v, Culture=%s, LogLevel=%s}",
		c.CacheCapacity,
		c.CacheTTL,
		c.CacheSweep,
		c.EvalTimeout,
		c.SecurityLevel,
		c.DollarSyntax,
		c.Culture,
		c.LogLevel,
	)
}
