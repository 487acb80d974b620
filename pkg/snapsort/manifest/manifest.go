// Package manifest loads checksum manifests and answers per-file duplicate
// checks against them.
//
// A manifest is a text file with one entry per non-empty line. The first
// whitespace-delimited token of each line is a lowercase hex digest; any
// remaining tokens (typically the originally recorded filename) are ignored.
// The digest algorithm is selected from the manifest's own filename.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/snapsort/pkg/snapsort/logging"
)

// ErrEmpty is returned by Load when a manifest contains no entries.
var ErrEmpty = errors.New("manifest file is empty")

// Load reads and parses the manifest at path.
//
// A manifest with zero non-empty lines is an error, not a valid empty
// manifest. An unrecognized algorithm marker in the filename is not an
// error: the manifest defaults to SHA256 and a warning is logged.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var checksums []string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		checksums = append(checksums, fields[0])
	}

	if len(checksums) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	name := filepath.Base(path)
	alg, recognized := DetectAlgorithm(name)
	if !recognized {
		logging.Get("manifest").Warn("no digest algorithm marker in manifest name, defaulting to sha256", "manifest", name)
	}

	return &Manifest{Checksums: checksums, Algorithm: alg}, nil
}

// IsDuplicate reports whether the file at path is already recorded in the
// manifest. A nil manifest never matches; this is how deduplication stays
// optional for callers.
//
// The file is read whole and digested with the manifest's algorithm; the
// digest is compared by exact string equality against every entry, first
// match wins. On a match the returned path is the source path itself.
func (m *Manifest) IsDuplicate(path string) (string, bool, error) {
	if m == nil {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}

	digest := m.Algorithm.Sum(data)
	for _, checksum := range m.Checksums {
		if digest == checksum {
			return path, true, nil
		}
	}
	return "", false, nil
}
