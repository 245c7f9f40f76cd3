package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/slh-dsa/sloth/pkg/annotate"
	"github.com/slh-dsa/sloth/pkg/config"
	"github.com/slh-dsa/sloth/pkg/output"
	"github.com/slh-dsa/sloth/pkg/trace"
	"github.com/slh-dsa/sloth/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigFile     string
	FunctionReport string
	OutputDir      string
	BaseDir        string
	Format         string
	Strict         bool
	Quiet          bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [trace-log]",
		Short: "Write the function breakdown and annotated sources",
		Long: `Parse a trace log and write the profiling reports.

Outputs:
  - func.txt: hit count per function, in first-seen order
  - one annotated copy per referenced source file, named after its path
    relative to the working directory with '/' replaced by '_'

The trace log defaults to ../firmware.pmap. Existing outputs are overwritten.

Exit codes:
  0 - All reports written
  1 - Some sources could not be annotated or an output failed
  2 - Configuration or runtime error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().StringVar(&opts.FunctionReport, "function-report", "", "Function report file name (default func.txt)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for reports and annotated sources")
	cmd.Flags().StringVar(&opts.BaseDir, "base-dir", "", "Directory stripped from source paths (default: working directory)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Function report format (text|json|xlsx)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Abort at the first source file that cannot be read")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "One-line summary")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()
	start := time.Now()

	cfg, err := loadConfig(ctx, opts.ConfigFile, args)
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cfg, opts)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	profile, err := trace.ParseFile(ctx, cfg.TraceLog)
	if err != nil {
		return err
	}
	logger.Debug("trace parsed", slog.String("trace_log", cfg.TraceLog),
		slog.Int("lines", profile.Stats.LinesRead),
		slog.Int("functions", profile.Functions.Len()),
		slog.Int("files", profile.Files.Len()))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	report := output.NewReport(profile, opts.ConfigFile)
	failed := false

	formatter, err := output.NewFormatter(cfg.Format, output.FormatOptions{CountWidth: cfg.CountWidth})
	if err != nil {
		return err
	}
	reportPath := cfg.FunctionReportPath()
	if err := output.WriteReport(ctx, reportPath, formatter, report); err != nil {
		// the annotated sources are still worth writing
		logger.Error("function report not written", slog.String("path", reportPath), slog.String("error", err.Error()))
		failed = true
	} else {
		report.Metadata.FunctionReport = reportPath
	}

	annotator := annotate.New(
		annotate.WithBaseDir(cfg.BaseDir),
		annotate.WithOutputDir(cfg.OutputDir),
		annotate.WithCountWidth(cfg.CountWidth),
		annotate.WithMissingPolicy(annotate.MissingPolicy(cfg.MissingSources)),
		annotate.WithCollisionPolicy(annotate.CollisionPolicy(cfg.Collisions)),
		annotate.WithLogger(logger),
	)
	result, err := annotator.Run(ctx, profile.Files)
	if err != nil {
		return fmt.Errorf("annotating sources: %w", err)
	}

	report.Summary.FilesAnnotated = len(result.Written)
	report.Summary.FilesSkipped = len(result.Skipped)
	report.Summary.Collisions = len(result.Collisions)
	report.Metadata.SkippedSources = result.SkippedSources()
	report.Metadata.AnalyzedAt = time.Now()
	report.Metadata.Duration = time.Since(start)

	output.WriteSummary(cmd.OutOrStdout(), report, opts.Quiet)

	// Webhook errors are logged but don't fail the run
	webhook.NewClient(logger).Notify(ctx, collectWebhooks(cfg, opts), report)

	if report.HasIssues() || failed {
		ExitCode = 1
	}
	return nil
}

// applyAnalyzeFlags lets explicit flags override the configuration.
func applyAnalyzeFlags(cfg *config.Config, opts *AnalyzeOptions) {
	if opts.FunctionReport != "" {
		cfg.FunctionReport = opts.FunctionReport
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Strict {
		cfg.MissingSources = string(annotate.MissingAbort)
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
