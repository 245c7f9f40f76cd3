package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path yields the
// defaults with environment overrides applied.
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

	cfg.applyEnvironmentOverrides()

	// Tokens are expanded once here; Validate may run again after flags
	// are applied and must see the expanded value.
	for i := range cfg.Webhooks {
		cfg.Webhooks[i].Token = expandEnvVar(cfg.Webhooks[i].Token)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults for
// zero values.
func Validate(cfg *Config) error {
	if cfg.TraceLog == "" {
		return errors.New("trace_log: a trace log path is required")
	}

	if cfg.FunctionReport == "" {
		cfg.FunctionReport = DefaultFunctionReport
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.CountWidth == 0 {
		cfg.CountWidth = DefaultCountWidth
	}
	if cfg.CountWidth < 1 || cfg.CountWidth > MaxCountWidth {
		return fmt.Errorf("count_width: must be between 1 and %d, got %d", MaxCountWidth, cfg.CountWidth)
	}

	switch cfg.Format {
	case "":
		cfg.Format = DefaultFormat
	case "text", "json", "xlsx":
	default:
		return fmt.Errorf("format: invalid value %q (must be text, json, or xlsx)", cfg.Format)
	}

	switch cfg.MissingSources {
	case "":
		cfg.MissingSources = DefaultMissingSources
	case "skip", "abort":
	default:
		return fmt.Errorf("missing_sources: invalid value %q (must be skip or abort)", cfg.MissingSources)
	}

	switch cfg.Collisions {
	case "":
		cfg.Collisions = DefaultCollisions
	case "overwrite", "error":
	default:
		return fmt.Errorf("collisions: invalid value %q (must be overwrite or error)", cfg.Collisions)
	}

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

// FunctionReportPath returns where the function breakdown is written.
func (c *Config) FunctionReportPath() string {
	if filepath.IsAbs(c.FunctionReport) {
		return c.FunctionReport
	}
	return filepath.Join(c.OutputDir, c.FunctionReport)
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
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

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnIssues
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
