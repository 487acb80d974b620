// Package dates resolves a canonical timestamp for a file.
//
// Resolution prefers the capture time embedded in the file's EXIF metadata
// and falls back to the filesystem modification time. Modification time is
// used rather than creation time because it is reported on strictly more
// platforms and filesystems.
package dates

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Timestamp layouts accepted from embedded metadata. EXIF stores the native
// colon-separated form; some extractors render the dashed form instead.
var metadataLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
}

// ExtractFunc reads embedded container metadata and returns the primary
// date/time field as text. The boolean reports whether a field was found.
// Implementations must not fail: an unreadable or metadata-free container
// simply reports no field.
type ExtractFunc func(r io.Reader) (string, bool)

// Resolver resolves file timestamps.
type Resolver struct {
	extract ExtractFunc
}

// NewResolver returns a Resolver backed by EXIF metadata extraction.
func NewResolver() *Resolver {
	return &Resolver{extract: exifDateTime}
}

// NewResolverWithExtractor returns a Resolver using a custom metadata
// extractor. Used by tests and callers with non-EXIF containers.
func NewResolverWithExtractor(extract ExtractFunc) *Resolver {
	return &Resolver{extract: extract}
}

// Resolve returns the best-effort timestamp for the file at path.
//
// The embedded metadata date wins when present and parseable; malformed or
// absent metadata is never an error and falls through to the modification
// time in local calendar time. Resolve fails only when the file's
// filesystem metadata cannot be read.
func (r *Resolver) Resolve(path string) (time.Time, error) {
	if t, ok := r.metadataDate(path); ok {
		return t, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().Local(), nil
}

// metadataDate attempts the embedded-metadata step of resolution.
func (r *Resolver) metadataDate(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	text, ok := r.extract(f)
	if !ok {
		return time.Time{}, false
	}

	text = strings.TrimSpace(text)
	for _, layout := range metadataLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// exifDateTime extracts the DateTime tag text from an EXIF container.
func exifDateTime(r io.Reader) (string, bool) {
	x, err := exif.Decode(r)
	if err != nil {
		return "", false
	}

	tag, err := x.Get(exif.DateTime)
	if err != nil {
		return "", false
	}

	s, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return s, true
}
