package commands

import (
	"context"
	"fmt"

	"github.com/slh-dsa/sloth/pkg/config"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// loadConfig loads the optional config file and applies the trace log
// positional argument on top of it.
func loadConfig(ctx context.Context, configPath string, args []string) (*config.Config, error) {
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if len(args) > 0 && args[0] != "" {
		cfg.TraceLog = args[0]
	}
	return cfg, nil
}
