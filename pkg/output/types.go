// Package output provides report generation for parsed trace profiles.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/slh-dsa/sloth/pkg/trace"
)

// Report is the complete output of one profiling run.
type Report struct {
	// Functions lists function hit counts in first-seen order.
	Functions []FunctionCount `json:"functions"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// FunctionCount is one line of the function breakdown.
type FunctionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// LinesProcessed is the number of trace log lines read.
	LinesProcessed int `json:"lines_processed"`

	// AddressMarkers is the number of address marker lines.
	AddressMarkers int `json:"address_markers"`

	// FunctionHits and SourceHits count function and source location records.
	FunctionHits int `json:"function_hits"`
	SourceHits   int `json:"source_hits"`

	// DistinctFunctions and DistinctFiles are the table sizes.
	DistinctFunctions int `json:"distinct_functions"`
	DistinctFiles     int `json:"distinct_files"`

	// FilesAnnotated is the number of annotated source files written.
	FilesAnnotated int `json:"files_annotated"`

	// FilesSkipped is the number of referenced sources that could not be annotated.
	FilesSkipped int `json:"files_skipped"`

	// Collisions is the number of annotated outputs that reused an earlier output name.
	Collisions int `json:"collisions"`
}

// Metadata provides context about the run.
type Metadata struct {
	// RunID identifies the run in webhook payloads.
	RunID string `json:"run_id"`

	// TraceLog is the path of the trace log that was parsed.
	TraceLog string `json:"trace_log"`

	// ConfigFile is the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// FunctionReport is where the function breakdown was written.
	FunctionReport string `json:"function_report,omitempty"`

	// SkippedSources lists sources that could not be annotated.
	SkippedSources []string `json:"skipped_sources,omitempty"`

	// AnalyzedAt is when the run finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from a parsed profile.
func NewReport(profile *trace.Profile, configFile string) *Report {
	names := profile.Functions.Names()
	functions := make([]FunctionCount, 0, len(names))
	for _, name := range names {
		functions = append(functions, FunctionCount{Name: name, Count: profile.Functions.Count(name)})
	}

	return &Report{
		Functions: functions,
		Summary: Summary{
			LinesProcessed:    profile.Stats.LinesRead,
			AddressMarkers:    profile.Stats.Addresses,
			FunctionHits:      profile.Stats.FunctionRecords,
			SourceHits:        profile.Stats.SourceRecords,
			DistinctFunctions: profile.Functions.Len(),
			DistinctFiles:     profile.Files.Len(),
		},
		Metadata: Metadata{
			RunID:      uuid.NewString(),
			TraceLog:   profile.Source,
			ConfigFile: configFile,
			AnalyzedAt: time.Now(),
		},
	}
}

// HasIssues returns true if any referenced source could not be annotated.
// Collisions that were overwritten are reported but are not issues.
func (r *Report) HasIssues() bool {
	return r.Summary.FilesSkipped > 0
}
