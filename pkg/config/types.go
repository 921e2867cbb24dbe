// Package config provides configuration loading and validation for mjconv.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// WriteMode selects how output files are written: atomic or truncate.
	WriteMode string `yaml:"write_mode" env:"MJCONV_WRITE_MODE"`

	// VersionConstraint is the semver constraint a record's "ver" must meet.
	// An empty string disables the check.
	VersionConstraint string `yaml:"version_constraint" env:"MJCONV_VERSION_CONSTRAINT"`

	Log      LogConfig       `yaml:"log" envPrefix:"MJCONV_LOG_"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// LogConfig controls the diagnostic log stream.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFailures fires only when at least one file failed (default).
	WebhookTriggerOnFailures WebhookTrigger = "on_failures"
	// WebhookTriggerAlways fires after every batch.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines an endpoint that receives the batch summary.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "on_failures".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the per-attempt HTTP timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Retries is how many times a 5xx or transport error is retried.
	// Unset means 2; 0 disables retries.
	Retries *int `yaml:"retries,omitempty"`
}

// RetryCount returns the configured number of retries.
func (w *WebhookConfig) RetryCount() int {
	if w.Retries == nil {
		return DefaultWebhookRetries
	}
	return *w.Retries
}

// ShouldFire reports whether the webhook fires for a batch outcome.
func (w *WebhookConfig) ShouldFire(hasFailures bool) bool {
	switch w.Trigger {
	case WebhookTriggerAlways:
		return true
	case WebhookTriggerNever:
		return false
	default:
		return hasFailures
	}
}
