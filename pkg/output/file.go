package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrOutputWrite is returned when a report or annotated file cannot be
// created or written.
var ErrOutputWrite = errors.New("output write failed")

// WriteError reports which destination failed.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrOutputWrite and the underlying cause.
func (e *WriteError) Unwrap() []error {
	return []error{ErrOutputWrite, e.Err}
}

// WriteFile replaces the file at path with content.
func WriteFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil { // #nosec G306 -- reports are meant to be read
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// WriteReport renders report with formatter and writes it to path,
// overwriting any existing file. Nothing is written if rendering fails.
func WriteReport(ctx context.Context, path string, formatter Formatter, report *Report) error {
	var buf bytes.Buffer
	if err := formatter.Format(ctx, report, &buf); err != nil {
		return fmt.Errorf("formatting %s report: %w", formatter.Name(), err)
	}
	return WriteFile(path, buf.Bytes())
}
