package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders the function breakdown of a report.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, xlsx).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// CountWidth is the width of the right-justified count field.
	// Zero means DefaultCountWidth.
	CountWidth int
}

func (o FormatOptions) width() int {
	if o.CountWidth <= 0 {
		return DefaultCountWidth
	}
	return o.CountWidth
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "xlsx":
		return NewExcelFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, json or xlsx)", name)
	}
}
