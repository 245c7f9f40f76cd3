package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// DefaultCountWidth fits counts up to 999,999,999 without widening the gutter.
const DefaultCountWidth = 9

// Separator sits between the count gutter and the text.
const Separator = " : "

// CountField right-justifies count in width columns. A zero count
// renders as width blanks.
func CountField(count, width int) string {
	if count == 0 {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, count)
}

// TextFormatter writes the function breakdown as "<count> : <name>" lines.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the function table in first-seen order.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	bw := bufio.NewWriter(w)
	width := f.opts.width()
	for _, fc := range report.Functions {
		if _, err := fmt.Fprintf(bw, "%s%s%s\n", CountField(fc.Count, width), Separator, fc.Name); err != nil {
			return err
		}
	}
	return bw.Flush()
}
