package trace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// maxLineSize bounds a single trace log line.
const maxLineSize = 1024 * 1024

// ParseFile opens the trace log at path and parses it.
func ParseFile(ctx context.Context, path string) (*Profile, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening trace log %s: %w", path, err)
	}
	defer f.Close()

	profile, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	profile.Source = path
	return profile, nil
}

// Parse reads a trace log from r and accumulates its function and source
// line hit counts. A malformed address marker aborts the parse.
func Parse(ctx context.Context, r io.Reader) (*Profile, error) {
	profile := NewProfile()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	// Address markers are tracked but nothing consumes them yet.
	var addr uint64

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		profile.Stats.LinesRead++
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)

		rec, err := Classify(line)
		if err != nil {
			var addrErr *MalformedAddressError
			if errors.As(err, &addrErr) {
				addrErr.LineNum = profile.Stats.LinesRead
			}
			return nil, err
		}

		switch rec.Kind {
		case KindAddress:
			addr = rec.Address
			profile.Stats.Addresses++
		case KindSourceLocation:
			profile.Files.Add(rec.File, rec.Line)
			profile.Stats.SourceRecords++
		case KindFunction:
			profile.Functions.Add(rec.Symbol)
			profile.Stats.FunctionRecords++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace log: %w", err)
	}

	_ = addr
	return profile, nil
}
