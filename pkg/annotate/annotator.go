package annotate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/slh-dsa/sloth/pkg/output"
	"github.com/slh-dsa/sloth/pkg/trace"
)

// MissingPolicy decides what happens when a referenced source cannot be read.
type MissingPolicy string

const (
	// MissingSkip logs the source, leaves its output untouched and continues.
	MissingSkip MissingPolicy = "skip"

	// MissingAbort stops the run at the first unreadable source.
	MissingAbort MissingPolicy = "abort"
)

// CollisionPolicy decides what happens when two sources share an output name.
type CollisionPolicy string

const (
	// CollisionOverwrite lets the later source replace the earlier output.
	CollisionOverwrite CollisionPolicy = "overwrite"

	// CollisionError refuses to write the later source.
	CollisionError CollisionPolicy = "error"
)

// Written describes one annotated file.
type Written struct {
	Source string
	Output string
	Stats
}

// Skipped is a source that produced no output.
type Skipped struct {
	Source string
	Err    error
}

// Collision is a source whose output name was already used in this run.
type Collision struct {
	Source string
	Output string
}

// Result is the outcome of annotating every file in a table.
type Result struct {
	Written    []Written
	Skipped    []Skipped
	Collisions []Collision
}

// SkippedSources returns the paths of skipped sources in table order.
func (r *Result) SkippedSources() []string {
	out := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		out = append(out, s.Source)
	}
	return out
}

// Annotator writes annotated copies of the sources in a trace.FileTable.
type Annotator struct {
	baseDir    string
	outputDir  string
	width      int
	missing    MissingPolicy
	collisions CollisionPolicy
	logger     *slog.Logger
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithBaseDir sets the directory whose leading segments are stripped from
// source paths. Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(a *Annotator) {
		a.baseDir = dir
	}
}

// WithOutputDir sets where annotated files are written (default ".").
func WithOutputDir(dir string) Option {
	return func(a *Annotator) {
		if dir != "" {
			a.outputDir = dir
		}
	}
}

// WithCountWidth sets the gutter width.
func WithCountWidth(width int) Option {
	return func(a *Annotator) {
		if width > 0 {
			a.width = width
		}
	}
}

// WithMissingPolicy sets the unreadable-source policy.
func WithMissingPolicy(p MissingPolicy) Option {
	return func(a *Annotator) {
		if p != "" {
			a.missing = p
		}
	}
}

// WithCollisionPolicy sets the output name collision policy.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(a *Annotator) {
		if p != "" {
			a.collisions = p
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Annotator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Annotator.
func New(opts ...Option) *Annotator {
	a := &Annotator{
		outputDir:  ".",
		width:      output.DefaultCountWidth,
		missing:    MissingSkip,
		collisions: CollisionOverwrite,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run annotates every file in files, in table order. Each output is built
// fully in memory before its file is replaced. The returned error is
// non-nil only when the base directory cannot be resolved, MissingAbort
// stops the run or ctx is cancelled; per-file problems are collected in
// the Result. No output is written over any source named in files.
func (a *Annotator) Run(ctx context.Context, files *trace.FileTable) (*Result, error) {
	base, err := ResolveBase(a.baseDir)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	used := mapset.NewThreadUnsafeSet[string]()
	sources := absSources(files)

	for _, src := range files.Files() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		name := OutputName(base, src)
		outPath := filepath.Join(a.outputDir, name)

		if used.Contains(name) {
			result.Collisions = append(result.Collisions, Collision{Source: src, Output: name})
			if a.collisions == CollisionError {
				a.logger.Error("output name already used, not writing",
					slog.String("source", src), slog.String("output", name))
				result.Skipped = append(result.Skipped, Skipped{Source: src, Err: fmt.Errorf("%w: %s", ErrNameCollision, name)})
				continue
			}
			a.logger.Warn("output name already used, overwriting",
				slog.String("source", src), slog.String("output", name))
		}

		if abs, err := filepath.Abs(outPath); err == nil && sources.Contains(abs) {
			a.logger.Error("output would replace a traced source, not writing",
				slog.String("source", src), slog.String("output", outPath))
			result.Skipped = append(result.Skipped, Skipped{Source: src, Err: fmt.Errorf("%w: %s", ErrOverwriteSource, outPath)})
			continue
		}

		stats, err := a.annotateFile(src, outPath, files.Lines(src))
		if err != nil {
			var srcErr *SourceError
			if errors.As(err, &srcErr) && a.missing == MissingAbort {
				return result, err
			}
			a.logger.Error("annotation failed", slog.String("source", src), slog.String("error", err.Error()))
			result.Skipped = append(result.Skipped, Skipped{Source: src, Err: err})
			continue
		}

		used.Add(name)
		a.logger.Info("writing", slog.String("output", outPath), slog.Int("lines", stats.Lines), slog.Int("hit_lines", stats.HitLines))
		result.Written = append(result.Written, Written{Source: src, Output: outPath, Stats: stats})
	}

	return result, nil
}

func (a *Annotator) annotateFile(src, outPath string, lines trace.LineCounts) (Stats, error) {
	data, err := os.ReadFile(src) // #nosec G304 -- paths come from the trace log
	if err != nil {
		return Stats{}, &SourceError{Path: src, Err: err}
	}

	var buf bytes.Buffer
	stats, err := Annotate(&buf, bytes.NewReader(data), lines, a.width)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %s: %w", ErrSourceRead, src, err)
	}

	if err := output.WriteFile(outPath, buf.Bytes()); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// ResolveBase returns dir as an absolute slash-separated path; an empty dir
// means the working directory.
func ResolveBase(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}
	return filepath.ToSlash(abs), nil
}

// absSources returns the absolute paths of every file in the table.
func absSources(files *trace.FileTable) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, src := range files.Files() {
		if abs, err := filepath.Abs(src); err == nil {
			set.Add(abs)
		}
	}
	return set
}
