package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter writes the whole report, including summary and metadata,
// as a single JSON document.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format encodes report. Symbols are written verbatim, so C++ names such
// as "std::vector<int>::push_back" keep their angle brackets.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
