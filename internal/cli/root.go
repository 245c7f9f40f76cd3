// Package cli provides the command-line interface for eprof.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/slh-dsa/sloth/internal/cli/commands"
	"github.com/slh-dsa/sloth/internal/cli/plugins"
)

// Execute runs the root command with the process arguments and returns
// the exit code.
func Execute() int {
	return Run(context.Background(), os.Args[1:], plugins.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// Run executes eprof with args and returns the exit code: 0 on a clean
// run, 1 when the run completed with issues, 2 on a fatal error.
func Run(ctx context.Context, args []string, stdio plugins.Stdio) int {
	commands.ExitCode = 0
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdio.In)
	rootCmd.SetOut(stdio.Out)
	rootCmd.SetErr(stdio.Err)

	candidate := ""
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' && !isBuiltinCommand(rootCmd, args[0]) {
		candidate = args[0]
		if pluginPath, err := plugins.FindPlugin(candidate); err == nil {
			return plugins.Execute(ctx, pluginPath, args[1:], stdio)
		}
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if candidate != "" {
			_, _ = fmt.Fprintln(stdio.Err, plugins.FormatNotFoundError(candidate))
			return 2
		}
		_, _ = fmt.Fprintf(stdio.Err, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "eprof",
		Short: "Aggregate firmware execution traces into profiles",
		Long: `eprof turns an instruction trace log from a firmware simulation into a
profile.

It produces:
  - A per-function hit count report (func.txt)
  - A copy of every referenced source file with a hit count gutter

PLUGINS:
  Unknown commands run a standalone binary named eprof-<command>.

  Plugin locations (searched in order):
    1. Same directory as the eprof binary
    2. ~/.eprof/plugins/
    3. Anywhere in PATH

  Available plugins:
    program  Flash the profiled firmware onto a board`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), debug)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// setupLogging installs the default slog logger on w.
func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
