package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/slh-dsa/sloth/pkg/annotate"
	"github.com/slh-dsa/sloth/pkg/config"
	"github.com/slh-dsa/sloth/pkg/trace"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigFile string
	SampleSize int
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [trace-log]",
		Short: "Diagnose common setup problems",
		Long: `Diagnose common setup problems before running analyze.

This command checks:
- Config file syntax and values
- Trace log existence and grammar
- Referenced source files
- Output file names that would overwrite each other
- Output directory writability
- Webhook configuration

Example:
  eprof diagnose ../firmware.pmap
  eprof diagnose -v -c eprof.yaml  # verbose output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", 1000, "Number of trace log lines to sample for the grammar check")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, args []string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	cfg, result := checkConfig(ctx, opts.ConfigFile, args)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	result = checkTraceLog(cfg.TraceLog)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	results = append(results, checkTraceGrammar(cfg.TraceLog, opts))

	profile, err := trace.ParseFile(ctx, cfg.TraceLog)
	if err == nil {
		results = append(results, checkSources(profile, opts))
		results = append(results, checkOutputNames(cfg, profile))
	}

	results = append(results, checkOutputDir(cfg.OutputDir))
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(ctx context.Context, path string, args []string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Configuration",
	}

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot access config file: %v", err)
			result.Suggests = []string{"Check the file path is correct"}
			return nil, result
		}
		if info.IsDir() {
			result.Status = "error"
			result.Message = "Path is a directory, not a file"
			return nil, result
		}
	}

	cfg, err := loadConfig(ctx, path, args)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "No config file, using defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", path)
	}
	result.Details = []string{
		fmt.Sprintf("Trace log: %s", cfg.TraceLog),
		fmt.Sprintf("Function report: %s (%s)", cfg.FunctionReportPath(), cfg.Format),
		fmt.Sprintf("Missing sources: %s", cfg.MissingSources),
		fmt.Sprintf("Collisions: %s", cfg.Collisions),
	}
	return cfg, result
}

func checkTraceLog(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Trace Log: %s", path),
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = "Trace log not found"
		result.Suggests = []string{
			"Run the simulation first; it writes firmware.pmap one directory up by default",
			"Pass the trace log path as an argument or set trace_log in the config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access trace log: %v", err)
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Trace log is empty; reports will be empty"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found (%d bytes)", info.Size())
	return result
}

// checkTraceGrammar classifies the first SampleSize lines of the trace log.
func checkTraceGrammar(path string, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Trace Grammar",
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot open trace log: %v", err)
		return result
	}
	defer f.Close()

	counts := map[trace.RecordKind]int{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sampled := 0
	for sampled < opts.SampleSize && scanner.Scan() {
		sampled++
		rec, err := trace.Classify(strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Line %d: %v", sampled, err)
			result.Suggests = []string{"The trace log is corrupt; re-run the simulation"}
			return result
		}
		counts[rec.Kind]++
	}
	if err := scanner.Err(); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Reading trace log: %v", err)
		return result
	}

	result.Details = []string{
		fmt.Sprintf("Address markers: %d", counts[trace.KindAddress]),
		fmt.Sprintf("Source locations: %d", counts[trace.KindSourceLocation]),
		fmt.Sprintf("Function symbols: %d", counts[trace.KindFunction]),
	}

	if sampled > 0 && counts[trace.KindSourceLocation] == 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("No source locations in the first %d lines", sampled)
		result.Suggests = []string{"Check that the harness resolves addresses to file:line"}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Sampled %d lines", sampled)
	return result
}

func checkSources(profile *trace.Profile, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Source Files",
	}

	missing := missingSources(profile.Files)
	for _, src := range profile.Files.Files() {
		if missing.Contains(src) {
			result.Details = append(result.Details, fmt.Sprintf("missing: %s", src))
		} else if opts.Verbose {
			result.Details = append(result.Details, src)
		}
	}

	if missing.Cardinality() > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d of %d referenced files not found", missing.Cardinality(), profile.Files.Len())
		result.Suggests = []string{
			"Run eprof from the directory the simulation was built in",
			"Missing files are skipped unless missing_sources is abort",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("All %d referenced files found", profile.Files.Len())
	return result
}

// checkOutputNames predicts annotated file names and reports sources that
// would overwrite each other.
func checkOutputNames(cfg *config.Config, profile *trace.Profile) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Output Names",
	}

	base, err := annotate.ResolveBase(cfg.BaseDir)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	sources := map[string]bool{}
	for _, src := range profile.Files.Files() {
		if abs, err := filepath.Abs(src); err == nil {
			sources[abs] = true
		}
	}

	owners := map[string]string{}
	replaced := 0
	for _, src := range profile.Files.Files() {
		name := annotate.OutputName(base, src)
		if abs, err := filepath.Abs(filepath.Join(cfg.OutputDir, name)); err == nil && sources[abs] {
			result.Details = append(result.Details, fmt.Sprintf("%s maps to %s, a traced source; it will be skipped", src, name))
			replaced++
			continue
		}
		if prev, ok := owners[name]; ok {
			result.Details = append(result.Details, fmt.Sprintf("%s and %s both map to %s", prev, src, name))
			continue
		}
		owners[name] = src
	}

	if len(result.Details) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d output name collision(s), %d output(s) over traced sources",
			len(result.Details)-replaced, replaced)
		result.Suggests = []string{
			"Later files overwrite earlier ones; set collisions: error to refuse instead",
			"Change base_dir so the differing path segments are kept",
			"Set output_dir to a separate directory to annotate sources in the base directory",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d distinct output names", len(owners))
	return result
}

func checkOutputDir(dir string) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Output Directory: %s", dir),
	}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		result.Status = "ok"
		result.Message = "Will be created"
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access output directory: %v", err)
		return result
	}
	if !info.IsDir() {
		result.Status = "error"
		result.Message = "Path exists but is not a directory"
		return result
	}

	probe, err := os.CreateTemp(dir, ".eprof-probe-*")
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Not writable: %v", err)
		result.Suggests = []string{"Check directory permissions or set output_dir"}
		return result
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	result.Status = "ok"
	result.Message = "Writable"
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== eprof Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analyze.")
		ExitCode = 1
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nanalyze will run but has warnings.")
	} else {
		fmt.Fprintln(w, "\nEverything looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		// config.Load already rejected bad URLs and triggers
		if u, err := url.Parse(wh.URL); err == nil && u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
			result.Status = "warning"
			result.Message = "Report is sent over plain http"
			result.Suggests = []string{"Use an https endpoint"}
			results = append(results, result)
			continue
		}
		if wh.Token == "" && wh.Trigger != config.WebhookTriggerNever && opts.Verbose {
			result.Details = append(result.Details, "No token configured")
		}

		result.Status = "ok"
		result.Message = fmt.Sprintf("Trigger: %s, timeout: %s", wh.Trigger, wh.Timeout)
		results = append(results, result)
	}

	return results
}
