// Package indexer produces checksum manifests for existing archive trees.
//
// The produced manifest uses the same text format the copy pipeline
// consumes: one entry per line, digest first, followed by the file's path
// relative to the indexed root. The tree is hashed in parallel; entries are
// sorted by path before writing so the output is deterministic.
package indexer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/snapsort/pkg/snapsort/logging"
	"github.com/jamesainslie/snapsort/pkg/snapsort/manifest"
)

// Entry is one indexed file.
type Entry struct {
	// Digest is the lowercase hex digest of the file's contents.
	Digest string

	// Path is the file path relative to the indexed root.
	Path string

	// Size is the file size in bytes.
	Size int64
}

// Indexer hashes every regular file under a root.
type Indexer struct {
	alg    manifest.Algorithm
	logger *logging.Logger

	mu      sync.Mutex
	entries []Entry
}

// New creates an Indexer using the given digest algorithm.
func New(alg manifest.Algorithm) *Indexer {
	return &Indexer{
		alg:    alg,
		logger: logging.Get("indexer"),
	}
}

// Index walks root and returns one entry per regular file, sorted by
// relative path. Unreadable files abort the index; an archive with files
// that cannot be hashed would produce a manifest that silently fails to
// deduplicate them later.
func (ix *Indexer) Index(ctx context.Context, root string) ([]Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	ix.mu.Lock()
	ix.entries = nil
	ix.mu.Unlock()

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return ix.hashFile(absRoot, path)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	sort.Slice(ix.entries, func(i, j int) bool {
		return ix.entries[i].Path < ix.entries[j].Path
	})
	ix.logger.Debug("index complete", "root", absRoot, "files", len(ix.entries))
	return ix.entries, nil
}

// hashFile digests one file and records its entry.
func (ix *Indexer) hashFile(root, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	entry := Entry{
		Digest: ix.alg.Sum(data),
		Path:   filepath.ToSlash(rel),
		Size:   int64(len(data)),
	}

	ix.mu.Lock()
	ix.entries = append(ix.entries, entry)
	ix.mu.Unlock()
	return nil
}

// WriteManifest writes entries in manifest format: digest, two spaces, path.
func WriteManifest(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %s\n", e.Digest, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// DefaultManifestName returns the conventional manifest filename for an
// algorithm, e.g. "manifest-sha256.txt". The name carries the marker that
// manifest.Load uses for algorithm detection.
func DefaultManifestName(alg manifest.Algorithm) string {
	return fmt.Sprintf("manifest-%s.txt", alg)
}
