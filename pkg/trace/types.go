// Package trace reads execution-trace logs and accumulates per-function and
// per-source-line hit counts.
package trace

// RecordKind identifies which of the three trace log record kinds a line is.
type RecordKind int

const (
	// KindFunction is a bare function symbol line.
	KindFunction RecordKind = iota

	// KindAddress is a hexadecimal address marker such as "0x1000".
	KindAddress

	// KindSourceLocation is a "<file>:<line> ..." record.
	KindSourceLocation
)

// String returns the record kind name.
func (k RecordKind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindSourceLocation:
		return "source"
	default:
		return "function"
	}
}

// Record is one classified trace log line.
// Only the fields belonging to Kind are set.
type Record struct {
	Kind RecordKind

	// Address is the marker value for KindAddress.
	Address uint64

	// File and Line locate a KindSourceLocation record.
	File string
	Line int

	// Symbol is the function identifier for KindFunction.
	Symbol string
}

// LineCounts maps a 1-based source line number to its hit count.
type LineCounts map[int]int

// FunctionTable counts hits per function identifier, remembering
// the order in which identifiers were first seen.
type FunctionTable struct {
	order  []string
	counts map[string]int
}

// NewFunctionTable creates an empty FunctionTable.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{counts: make(map[string]int)}
}

// Add records one hit for name.
func (t *FunctionTable) Add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

// Names returns the function identifiers in first-seen order.
func (t *FunctionTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Count returns the hit count for name, or 0 if it was never seen.
func (t *FunctionTable) Count(name string) int {
	return t.counts[name]
}

// Len returns the number of distinct functions.
func (t *FunctionTable) Len() int {
	return len(t.order)
}

// Total returns the sum of all function hit counts.
func (t *FunctionTable) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// FileTable counts hits per (file, line), remembering the order in
// which files were first seen. File paths are kept exactly as they
// appear in the trace log.
type FileTable struct {
	order []string
	files map[string]LineCounts
}

// NewFileTable creates an empty FileTable.
func NewFileTable() *FileTable {
	return &FileTable{files: make(map[string]LineCounts)}
}

// Add records one hit for line of file.
func (t *FileTable) Add(file string, line int) {
	lines, ok := t.files[file]
	if !ok {
		lines = make(LineCounts)
		t.files[file] = lines
		t.order = append(t.order, file)
	}
	lines[line]++
}

// Files returns the file paths in first-seen order.
func (t *FileTable) Files() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Lines returns the line counts for file, or nil if it was never seen.
func (t *FileTable) Lines(file string) LineCounts {
	return t.files[file]
}

// Count returns the hit count for line of file, or 0.
func (t *FileTable) Count(file string, line int) int {
	return t.files[file][line]
}

// Len returns the number of distinct files.
func (t *FileTable) Len() int {
	return len(t.order)
}

// Total returns the sum of all line hit counts across all files.
func (t *FileTable) Total() int {
	total := 0
	for _, lines := range t.files {
		for _, c := range lines {
			total += c
		}
	}
	return total
}

// Stats describes what a parse consumed.
type Stats struct {
	// LinesRead is the number of log lines examined.
	LinesRead int

	// Addresses is the number of address markers seen.
	Addresses int

	// SourceRecords is the number of source location records.
	SourceRecords int

	// FunctionRecords is the number of function symbol records.
	FunctionRecords int
}

// Profile is the result of parsing one trace log.
type Profile struct {
	// Source is the path of the trace log, if it was read from a file.
	Source string

	Functions *FunctionTable
	Files     *FileTable
	Stats     Stats
}

// NewProfile creates a Profile with empty tables.
func NewProfile() *Profile {
	return &Profile{
		Functions: NewFunctionTable(),
		Files:     NewFileTable(),
	}
}
