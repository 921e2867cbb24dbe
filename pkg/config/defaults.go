package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mjlog/mjconv/pkg/converter"
	"github.com/mjlog/mjconv/pkg/logger"
	"github.com/mjlog/mjconv/pkg/tenhou"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultWebhookRetries = 2
)

// Environment variable names.
const (
	EnvWriteMode         = "MJCONV_WRITE_MODE"
	EnvVersionConstraint = "MJCONV_VERSION_CONSTRAINT"
	EnvLogLevel          = "MJCONV_LOG_LEVEL"
	EnvLogJSON           = "MJCONV_LOG_JSON"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WriteMode:         string(converter.WriteAtomic),
		VersionConstraint: tenhou.DefaultVersionConstraint,
		Log: LogConfig{
			Level: string(logger.InfoLevel),
		},
	}
}

// applyEnvironmentOverrides applies MJCONV_* environment variables on top of
// the file values. Unset variables leave the field alone.
func (c *Config) applyEnvironmentOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}
