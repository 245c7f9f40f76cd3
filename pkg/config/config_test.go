package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
trace_log: /sim/out/firmware.pmap
function_report: functions.txt
output_dir: /tmp/eprof
count_width: 10
format: json
missing_sources: abort
collisions: error
`
	path := writeTempFile(t, "eprof.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TraceLog != "/sim/out/firmware.pmap" {
		t.Errorf("TraceLog = %q", cfg.TraceLog)
	}
	if cfg.CountWidth != 10 {
		t.Errorf("CountWidth = %d, want 10", cfg.CountWidth)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.MissingSources != "abort" {
		t.Errorf("MissingSources = %q, want abort", cfg.MissingSources)
	}
	if cfg.Collisions != "error" {
		t.Errorf("Collisions = %q, want error", cfg.Collisions)
	}
	if got := cfg.FunctionReportPath(); got != filepath.Join("/tmp/eprof", "functions.txt") {
		t.Errorf("FunctionReportPath() = %q", got)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeTempFile(t, "eprof.yaml", "output_dir: reports\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TraceLog != DefaultTraceLog {
		t.Errorf("TraceLog = %q, want %q", cfg.TraceLog, DefaultTraceLog)
	}
	if cfg.FunctionReport != DefaultFunctionReport {
		t.Errorf("FunctionReport = %q, want %q", cfg.FunctionReport, DefaultFunctionReport)
	}
	if cfg.OutputDir != "reports" {
		t.Errorf("OutputDir = %q, want reports", cfg.OutputDir)
	}
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	t.Setenv(EnvTraceLog, "")
	t.Setenv(EnvOutputDir, "")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TraceLog != DefaultTraceLog {
		t.Errorf("TraceLog = %q, want %q", cfg.TraceLog, DefaultTraceLog)
	}
	if cfg.FunctionReportPath() != "func.txt" {
		t.Errorf("FunctionReportPath() = %q, want func.txt", cfg.FunctionReportPath())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvTraceLog, "/elsewhere/run.pmap")
	t.Setenv(EnvOutputDir, "/elsewhere/out")

	path := writeTempFile(t, "eprof.yaml", "trace_log: ignored.pmap\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TraceLog != "/elsewhere/run.pmap" {
		t.Errorf("TraceLog = %q", cfg.TraceLog)
	}
	if cfg.OutputDir != "/elsewhere/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/eprof.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty trace log", func(c *Config) { c.TraceLog = "" }, "trace_log"},
		{"width too small", func(c *Config) { c.CountWidth = -1 }, "count_width"},
		{"width too large", func(c *Config) { c.CountWidth = MaxCountWidth + 1 }, "count_width"},
		{"unknown format", func(c *Config) { c.Format = "csv" }, "format"},
		{"unknown missing policy", func(c *Config) { c.MissingSources = "ignore" }, "missing_sources"},
		{"unknown collision policy", func(c *Config) { c.Collisions = "rename" }, "collisions"},
		{"xlsx format", func(c *Config) { c.Format = "xlsx" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FillsZeroValues(t *testing.T) {
	cfg := &Config{TraceLog: "x.pmap"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := DefaultConfig()
	want.TraceLog = "x.pmap"
	if cfg.FunctionReport != want.FunctionReport || cfg.OutputDir != want.OutputDir ||
		cfg.CountWidth != want.CountWidth || cfg.Format != want.Format ||
		cfg.MissingSources != want.MissingSources || cfg.Collisions != want.Collisions {
		t.Errorf("Validate() = %+v, want %+v", cfg, want)
	}
}

func TestFunctionReportPath_Absolute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = "/out"
	cfg.FunctionReport = "/reports/func.txt"
	if got := cfg.FunctionReportPath(); got != "/reports/func.txt" {
		t.Errorf("FunctionReportPath() = %q", got)
	}
}

// ============================================================================
// Webhook Validation Tests
// ============================================================================

func TestValidate_Webhook_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		Name:    "ci",
		URL:     "https://example.com/webhook",
		Trigger: WebhookTriggerAlways,
		Timeout: 5 * time.Second,
	}}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "http://localhost:8080/webhook"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnIssues {
		t.Errorf("Trigger = %q, want %q", cfg.Webhooks[0].Trigger, WebhookTriggerOnIssues)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestValidate_Webhook_Invalid(t *testing.T) {
	tests := []struct {
		name string
		wh   WebhookConfig
	}{
		{"missing url", WebhookConfig{Name: "no-url"}},
		{"bad scheme", WebhookConfig{URL: "ftp://example.com/hook"}},
		{"no host", WebhookConfig{URL: "http:///hook"}},
		{"bad trigger", WebhookConfig{URL: "https://example.com", Trigger: "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Webhooks = []WebhookConfig{tt.wh}
			if err := Validate(cfg); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestLoad_Webhook_TokenFromEnv(t *testing.T) {
	t.Setenv("EPROF_TEST_TOKEN", "secret")

	for _, token := range []string{"$EPROF_TEST_TOKEN", "${EPROF_TEST_TOKEN}"} {
		content := "webhooks:\n  - url: https://example.com\n    token: \"" + token + "\"\n"
		cfg, err := Load(context.Background(), writeTempFile(t, "eprof.yaml", content))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Webhooks[0].Token != "secret" {
			t.Errorf("Token %q expanded to %q, want secret", token, cfg.Webhooks[0].Token)
		}
	}
}

func TestLoad_Webhook_TokenExpandedOnce(t *testing.T) {
	t.Setenv("EPROF_TEST_TOKEN", "$notavar")
	t.Setenv("notavar", "wrong")

	content := "webhooks:\n  - url: https://example.com\n    token: $EPROF_TEST_TOKEN\n"
	cfg, err := Load(context.Background(), writeTempFile(t, "eprof.yaml", content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// analyze validates again after applying flags
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Token != "$notavar" {
		t.Errorf("Token = %q, want $notavar", cfg.Webhooks[0].Token)
	}
}

func TestValidate_Webhook_TokenLeftAsIs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "https://example.com", Token: "$LITERAL"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Token != "$LITERAL" {
		t.Errorf("Token = %q, want $LITERAL", cfg.Webhooks[0].Token)
	}
}

func TestLoad_WebhookFromYAML(t *testing.T) {
	content := `
trace_log: firmware.pmap
webhooks:
  - name: ci
    url: https://ci.example.com/hooks/eprof
    trigger: always
    timeout: 3s
`
	path := writeTempFile(t, "eprof.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Webhooks) != 1 {
		t.Fatalf("Webhooks = %d, want 1", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Webhooks[0].Timeout)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerAlways {
		t.Errorf("Trigger = %q, want always", cfg.Webhooks[0].Trigger)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
