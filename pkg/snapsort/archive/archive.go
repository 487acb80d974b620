// Package archive implements the copy pipeline: it walks a source path,
// skips files already recorded in a checksum manifest, resolves a date for
// everything else, and copies each file into a date-partitioned hierarchy
// under the destination root.
//
// Destination layout: <destination>/<year>/<MM>/<DD>/<name>. Month and day
// are zero-padded to two digits; the year keeps its natural decimal form.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/snapsort/pkg/snapsort/logging"
	"github.com/jamesainslie/snapsort/pkg/snapsort/manifest"
)

// ErrNoFileName is returned when a source path has no filename component.
var ErrNoFileName = errors.New("source path has no file name")

// DateResolver resolves the canonical timestamp of a file.
type DateResolver interface {
	Resolve(path string) (time.Time, error)
}

// Config holds the parameters of one archive operation. It is immutable
// once Process starts; recursion derives per-entry copies with only the
// Path field replaced.
type Config struct {
	// Path is the source file or directory.
	Path string

	// Destination is the root under which date directories are created.
	Destination string

	// Recursive enables descending into directories.
	Recursive bool

	// Rename replaces each destination filename with a fresh UUID,
	// preserving the source extension.
	Rename bool

	// Manifest, when non-nil, is consulted before every copy. Files whose
	// digest appears in it are skipped. The manifest is shared read-only
	// across the whole operation.
	Manifest *manifest.Manifest
}

// Event describes one processed file, delivered to the progress callback.
type Event struct {
	// Source is the source file path.
	Source string

	// Dest is the produced path: the destination file, or the source
	// itself when the file was a manifest duplicate.
	Dest string

	// Bytes is the number of bytes copied; zero for duplicates.
	Bytes int64

	// Duplicate reports whether the file was skipped as a duplicate.
	Duplicate bool
}

// ProgressFunc receives an Event after each file is processed.
type ProgressFunc func(Event)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress installs a per-file progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.onFile = fn }
}

// Pipeline archives files. It is not safe for concurrent use; one Process
// call runs at a time and handles files strictly sequentially.
type Pipeline struct {
	dates  DateResolver
	onFile ProgressFunc
	logger *logging.Logger
}

// New creates a Pipeline using the given date resolver.
func New(resolver DateResolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		dates:  resolver,
		logger: logging.Get("archive"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process archives cfg.Path into cfg.Destination and returns the produced
// paths in traversal order.
//
// A regular file yields exactly one result. A directory is descended when
// cfg.Recursive is set, visiting entries in enumeration order; without the
// flag it is an error that aborts the whole operation. Any other path kind
// (missing, socket, dangling symlink) is silently skipped. Errors from a
// descent propagate unchanged; files already copied are not rolled back.
func (p *Pipeline) Process(cfg Config) ([]string, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		// Vanished or unresolvable paths produce no result and no error.
		return nil, nil
	}

	switch {
	case info.Mode().IsRegular():
		dest, err := p.copyOne(cfg)
		if err != nil {
			return nil, err
		}
		return []string{dest}, nil

	case info.IsDir() && cfg.Recursive:
		entries, err := os.ReadDir(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", cfg.Path, err)
		}

		var results []string
		for _, entry := range entries {
			nested := cfg
			nested.Path = filepath.Join(cfg.Path, entry.Name())
			nestedResults, err := p.Process(nested)
			if err != nil {
				return nil, err
			}
			results = append(results, nestedResults...)
		}
		return results, nil

	case info.IsDir():
		return nil, fmt.Errorf("%s is a directory; use --recursive to archive directories", cfg.Path)

	default:
		// Sockets, devices and other irregular files are skipped.
		return nil, nil
	}
}

// copyOne archives a single regular file and returns the produced path.
func (p *Pipeline) copyOne(cfg Config) (string, error) {
	if dup, found, err := cfg.Manifest.IsDuplicate(cfg.Path); err != nil {
		return "", err
	} else if found {
		p.logger.Debug("skipping manifest duplicate", "source", cfg.Path)
		p.emit(Event{Source: cfg.Path, Dest: dup, Duplicate: true})
		return dup, nil
	}

	date, err := p.dates.Resolve(cfg.Path)
	if err != nil {
		return "", err
	}

	targetDir := filepath.Join(cfg.Destination, datePath(date))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", targetDir, err)
	}

	name, err := destName(cfg.Path, cfg.Rename)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(targetDir, name)
	n, err := copyFile(cfg.Path, dest)
	if err != nil {
		return "", err
	}

	p.logger.Debug("copied", "source", cfg.Path, "dest", dest, "bytes", n)
	p.emit(Event{Source: cfg.Path, Dest: dest, Bytes: n})
	return dest, nil
}

func (p *Pipeline) emit(ev Event) {
	if p.onFile != nil {
		p.onFile(ev)
	}
}

// datePath returns the relative date directory, e.g. "2020/12/26".
func datePath(t time.Time) string {
	return filepath.Join(
		fmt.Sprintf("%d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()),
	)
}

// destName computes the destination filename for a source path.
func destName(source string, rename bool) (string, error) {
	base := filepath.Base(source)
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %s", ErrNoFileName, source)
	}

	if !rename {
		return base, nil
	}

	// The v4 UUID string form is 36 lowercase hex-and-dash characters.
	// The source extension, if any, is preserved byte for byte.
	return uuid.New().String() + filepath.Ext(base), nil
}

// copyFile copies source to dest, truncating any existing file at dest.
func copyFile(source, dest string) (int64, error) {
	in, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dest, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("copying %s: %w", source, err)
	}

	if err := out.Close(); err != nil {
		return n, fmt.Errorf("closing %s: %w", dest, err)
	}
	return n, nil
}
