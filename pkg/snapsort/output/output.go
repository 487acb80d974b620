// Package output provides formatters for displaying archive results in
// various output formats (plain, json).
//
// The package uses a registry pattern so formatter implementations can be
// selected at runtime by name.
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// FileRecord describes one processed file for output formatting.
type FileRecord struct {
	// Source is the source file path.
	Source string `json:"source"`

	// Dest is the produced path: the destination file, or the source
	// itself for a manifest duplicate.
	Dest string `json:"dest"`

	// Size is the number of bytes copied; zero for duplicates.
	Size int64 `json:"size"`

	// SizeHuman is the human-readable size (e.g. "1.5 MiB").
	SizeHuman string `json:"size_human"`

	// Duplicate reports whether the file was skipped as a duplicate.
	Duplicate bool `json:"duplicate"`
}

// Stats contains statistics about one archive operation.
type Stats struct {
	// FilesProcessed is the total number of files handled.
	FilesProcessed int `json:"files_processed"`

	// FilesCopied is the number of files actually copied.
	FilesCopied int `json:"files_copied"`

	// DuplicatesSkipped is the number of manifest duplicates skipped.
	DuplicatesSkipped int `json:"duplicates_skipped"`

	// BytesCopied is the total number of bytes copied.
	BytesCopied int64 `json:"bytes_copied"`

	// Duration is the total time taken.
	Duration time.Duration `json:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Files lists every processed file in traversal order.
	Files []FileRecord `json:"files"`

	// Stats contains run statistics.
	Stats Stats `json:"stats"`

	// Source is the archived source path.
	Source string `json:"source"`

	// Destination is the archive root.
	Destination string `json:"destination"`
}

// HumanSize renders a byte count in human-readable binary units.
func HumanSize(n int64) string {
	return humanize.IBytes(uint64(n))
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
