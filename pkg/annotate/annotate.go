package annotate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/slh-dsa/sloth/pkg/output"
	"github.com/slh-dsa/sloth/pkg/trace"
)

// maxLineSize bounds a single source line.
const maxLineSize = 1024 * 1024

// ErrSourceNotFound is returned when a source file named in the trace log
// cannot be opened or read.
var ErrSourceNotFound = errors.New("source not found")

// ErrNameCollision is returned under CollisionError when two sources map
// to the same output name.
var ErrNameCollision = errors.New("output name collision")

// ErrOverwriteSource is returned when an output path resolves to any source
// file named in the trace log, as happens for files directly in the base
// directory when the output directory is the base directory.
var ErrOverwriteSource = errors.New("output would overwrite a source")

// ErrSourceRead is returned when an existing source cannot be annotated,
// for example because a line exceeds the maximum line size.
var ErrSourceRead = errors.New("source read failed")

// SourceError reports which source file could not be read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceNotFound, e.Path, e.Err)
}

// Unwrap exposes both ErrSourceNotFound and the underlying cause.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceNotFound, e.Err}
}

// Stats describes one annotated file.
type Stats struct {
	// Lines is the number of source lines written.
	Lines int

	// HitLines is the number of lines that carried a count.
	HitLines int
}

// Annotate copies src to w, prefixing every line with its count from
// lines (or a blank gutter) and the separator. Line numbers start at 1 and
// follow the source, so recorded lines past the end are never printed.
// Trailing whitespace is stripped and lines end in "\n".
func Annotate(w io.Writer, src io.Reader, lines trace.LineCounts, width int) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)

	ln := 0
	for scanner.Scan() {
		ln++
		count := lines[ln]
		if count > 0 {
			stats.HitLines++
		}
		text := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if _, err := fmt.Fprintf(bw, "%s%s%s\n", output.CountField(count, width), output.Separator, text); err != nil {
			return stats, err
		}
		stats.Lines++
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, bw.Flush()
}
