package output

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteSummary prints a human-readable run summary. Totals use thousands
// separators, e.g. "Lines processed:    1,204,331".
func WriteSummary(w io.Writer, report *Report, quiet bool) {
	s := report.Summary
	p := message.NewPrinter(language.English)

	if quiet {
		p.Fprintf(w, "eprof: %d functions, %d files annotated, %d skipped\n",
			s.DistinctFunctions, s.FilesAnnotated, s.FilesSkipped)
		return
	}

	p.Fprintln(w, "=== eprof summary ===")
	p.Fprintf(w, "Trace log:          %s\n", report.Metadata.TraceLog)
	p.Fprintf(w, "Lines processed:    %d\n", s.LinesProcessed)
	p.Fprintf(w, "Address markers:    %d\n", s.AddressMarkers)
	p.Fprintf(w, "Function hits:      %d (%d distinct)\n", s.FunctionHits, s.DistinctFunctions)
	p.Fprintf(w, "Source line hits:   %d (%d files)\n", s.SourceHits, s.DistinctFiles)
	if report.Metadata.FunctionReport != "" {
		p.Fprintf(w, "Function report:    %s\n", report.Metadata.FunctionReport)
	}
	p.Fprintf(w, "Files annotated:    %d\n", s.FilesAnnotated)
	if s.FilesSkipped > 0 {
		p.Fprintf(w, "Files skipped:      %d\n", s.FilesSkipped)
		for _, src := range report.Metadata.SkippedSources {
			p.Fprintf(w, "  - %s\n", src)
		}
	}
	if s.Collisions > 0 {
		p.Fprintf(w, "Name collisions:    %d\n", s.Collisions)
	}
}
