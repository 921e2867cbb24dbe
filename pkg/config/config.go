package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/mjlog/mjconv/pkg/converter"
	"github.com/mjlog/mjconv/pkg/logger"
)

// Load builds the configuration from defaults, the optional file at path and
// the environment, then validates it. An empty path skips the file.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and normalizes its values.
func Validate(cfg *Config) error {
	mode, err := converter.ParseWriteMode(cfg.WriteMode)
	if err != nil {
		return fmt.Errorf("write_mode: %w", err)
	}
	cfg.WriteMode = string(mode)

	if cfg.VersionConstraint != "" {
		if _, err := semver.NewConstraint(cfg.VersionConstraint); err != nil {
			return fmt.Errorf("version_constraint: invalid constraint %q: %w", cfg.VersionConstraint, err)
		}
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	cfg.Log.Level = string(level)

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// ValidateWebhook checks and defaults a single webhook, such as one built
// from command-line flags.
func ValidateWebhook(wh *WebhookConfig) error {
	return validateWebhook(wh)
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnFailures
	case WebhookTriggerOnFailures, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_failures, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	if wh.Retries == nil {
		retries := DefaultWebhookRetries
		wh.Retries = &retries
	} else if *wh.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", *wh.Retries)
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
