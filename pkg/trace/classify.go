package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedAddress is returned when an address marker does not hold a
// valid hexadecimal value.
var ErrMalformedAddress = errors.New("malformed address")

// MalformedAddressError reports the offending marker and, when known,
// the log line it came from.
type MalformedAddressError struct {
	Text    string
	LineNum int
	Err     error
}

func (e *MalformedAddressError) Error() string {
	if e.LineNum > 0 {
		return fmt.Sprintf("line %d: %s %q: %v", e.LineNum, ErrMalformedAddress, e.Text, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", ErrMalformedAddress, e.Text, e.Err)
}

// Unwrap lets errors.Is match ErrMalformedAddress.
func (e *MalformedAddressError) Unwrap() error {
	return ErrMalformedAddress
}

// Classify turns a single trace log line into a Record. The line must
// already have its trailing whitespace removed.
//
// Lines starting with "0x" are address markers. Lines whose first ':'
// sits past index 0 and is followed (after optional spaces) by a digit
// are source locations. Everything else, including the empty line, is a
// function symbol.
func Classify(line string) (Record, error) {
	if strings.HasPrefix(line, "0x") {
		addr, err := strconv.ParseUint(line[2:], 16, 64)
		if err != nil {
			return Record{}, &MalformedAddressError{Text: line, Err: err}
		}
		return Record{Kind: KindAddress, Address: addr}, nil
	}

	if file, ln, ok := splitLocation(line); ok {
		return Record{Kind: KindSourceLocation, File: file, Line: ln}, nil
	}

	return Record{Kind: KindFunction, Symbol: line}, nil
}

// splitLocation parses "<file>:<digits>...". The digit run ends at the
// first non-digit character.
func splitLocation(line string) (string, int, bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return "", 0, false
	}

	rest := strings.TrimLeftFunc(line[colon+1:], unicode.IsSpace)
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", 0, false
	}

	ln, err := strconv.Atoi(rest[:end])
	if err != nil {
		// digit run too large for an int; no source file has that many lines
		return "", 0, false
	}
	return line[:colon], ln, true
}
