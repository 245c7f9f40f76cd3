package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultTraceLog       = "../firmware.pmap"
	DefaultFunctionReport = "func.txt"
	DefaultOutputDir      = "."
	DefaultCountWidth     = 9
	DefaultFormat         = "text"
	DefaultMissingSources = "skip"
	DefaultCollisions     = "overwrite"
	DefaultWebhookTimeout = 10 * time.Second

	// MaxCountWidth keeps the gutter readable.
	MaxCountWidth = 20
)

// Environment variable names.
const (
	EnvTraceLog  = "EPROF_TRACE_LOG"
	EnvOutputDir = "EPROF_OUTPUT_DIR"
)

// DefaultConfig returns the configuration used when no file is given:
// read ../firmware.pmap, write func.txt and the annotated sources into the
// working directory.
func DefaultConfig() *Config {
	return &Config{
		TraceLog:       DefaultTraceLog,
		FunctionReport: DefaultFunctionReport,
		OutputDir:      DefaultOutputDir,
		CountWidth:     DefaultCountWidth,
		Format:         DefaultFormat,
		MissingSources: DefaultMissingSources,
		Collisions:     DefaultCollisions,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if path := os.Getenv(EnvTraceLog); path != "" {
		c.TraceLog = path
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}
}
