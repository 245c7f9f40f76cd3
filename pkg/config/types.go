// Package config provides configuration loading and validation for eprof.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// TraceLog is the trace log written by the simulation harness.
	TraceLog string `yaml:"trace_log"`

	// FunctionReport is the function breakdown file name, relative to OutputDir
	// unless absolute.
	FunctionReport string `yaml:"function_report"`

	// OutputDir receives the function report and the annotated sources.
	OutputDir string `yaml:"output_dir"`

	// BaseDir is the reference directory for deriving annotated file names.
	// Empty means the working directory.
	BaseDir string `yaml:"base_dir,omitempty"`

	// CountWidth is the width of the hit count gutter.
	CountWidth int `yaml:"count_width"`

	// Format is the function report format: text, json or xlsx.
	Format string `yaml:"format"`

	// MissingSources is "skip" or "abort".
	MissingSources string `yaml:"missing_sources"`

	// Collisions is "overwrite" or "error".
	Collisions string `yaml:"collisions"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when sources were skipped
	// (default). Overwritten name collisions do not count.
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending run reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
