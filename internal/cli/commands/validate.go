package commands

import (
	"context"
	"fmt"
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/slh-dsa/sloth/pkg/trace"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate [trace-log]",
		Short: "Check a trace log without writing reports",
		Long: `Parse a trace log and report what analyze would do, without writing anything.

Checks:
  - Configuration file syntax and values (when --config is given)
  - Trace log grammar (address markers must be valid hex)
  - Existence of every referenced source file (warning only)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, configPath, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
	return cmd
}

func runValidate(cmd *cobra.Command, configPath string, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()
	p := message.NewPrinter(language.English)

	cfg, err := loadConfig(ctx, configPath, args)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.Fprintf(w, "Validating %s...\n", cfg.TraceLog)

	profile, err := trace.ParseFile(ctx, cfg.TraceLog)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.Fprintf(w, "\nTrace log valid!\n")
	p.Fprintf(w, "  Lines:            %d\n", profile.Stats.LinesRead)
	p.Fprintf(w, "  Address markers:  %d\n", profile.Stats.Addresses)
	p.Fprintf(w, "  Function records: %d (%d distinct)\n", profile.Stats.FunctionRecords, profile.Functions.Len())
	p.Fprintf(w, "  Source records:   %d (%d files)\n", profile.Stats.SourceRecords, profile.Files.Len())

	missing := missingSources(profile.Files)
	if missing.Cardinality() == 0 {
		p.Fprintf(w, "\nAll %d source files found\n", profile.Files.Len())
		return nil
	}

	p.Fprintf(w, "\nWarning: %d of %d source files not found:\n", missing.Cardinality(), profile.Files.Len())
	for _, src := range profile.Files.Files() {
		if missing.Contains(src) {
			p.Fprintf(w, "  - %s\n", src)
		}
	}
	return nil
}

// missingSources returns the referenced files that cannot be stat'ed.
func missingSources(files *trace.FileTable) mapset.Set[string] {
	missing := mapset.NewThreadUnsafeSet[string]()
	for _, src := range files.Files() {
		if _, err := os.Stat(src); err != nil {
			missing.Add(src)
		}
	}
	return missing
}
