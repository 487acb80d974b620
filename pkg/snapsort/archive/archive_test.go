package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/snapsort/pkg/snapsort/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedResolver resolves every path to the same timestamp.
type fixedResolver struct {
	t time.Time
}

func (r fixedResolver) Resolve(_ string) (time.Time, error) {
	return r.t, nil
}

var christmas2020 = fixedResolver{t: time.Date(2020, 12, 26, 14, 30, 45, 0, time.Local)}

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestProcess_SingleFile(t *testing.T) {
	src := writeSource(t, t.TempDir(), "photo.jpg", "image bytes")
	dest := t.TempDir()

	results, err := New(christmas2020).Process(Config{Path: src, Destination: dest})
	require.NoError(t, err)
	require.Len(t, results, 1)

	want := filepath.Join(dest, "2020", "12", "26", "photo.jpg")
	assert.Equal(t, want, results[0])

	copied, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(copied))
}

func TestProcess_ZeroPadsMonthAndDay(t *testing.T) {
	src := writeSource(t, t.TempDir(), "a.txt", "x")
	dest := t.TempDir()

	resolver := fixedResolver{t: time.Date(2021, 3, 5, 0, 0, 0, 0, time.Local)}
	results, err := New(resolver).Process(Config{Path: src, Destination: dest})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, filepath.Join(dest, "2021", "03", "05", "a.txt"), results[0])
}

func TestProcess_MissingPathSkipped(t *testing.T) {
	results, err := New(christmas2020).Process(Config{
		Path:        filepath.Join(t.TempDir(), "vanished.jpg"),
		Destination: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcess_DirectoryWithoutRecursive(t *testing.T) {
	srcDir := t.TempDir()
	writeSource(t, srcDir, "a.txt", "x")

	_, err := New(christmas2020).Process(Config{Path: srcDir, Destination: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive")
}

func TestProcess_Recursive(t *testing.T) {
	srcDir := t.TempDir()
	writeSource(t, srcDir, "a.txt", "aaa")
	nested := filepath.Join(srcDir, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeSource(t, nested, "b.txt", "bbbb")

	dest := t.TempDir()
	results, err := New(christmas2020).Process(Config{
		Path:        srcDir,
		Destination: dest,
		Recursive:   true,
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := os.Stat(filepath.Join(dest, "2020", "12", "26", name))
		assert.NoError(t, err, "expected %s in date directory", name)
	}
}

func TestProcess_Rename(t *testing.T) {
	src := writeSource(t, t.TempDir(), "photo.JPG", "image bytes")
	dest := t.TempDir()

	results, err := New(christmas2020).Process(Config{
		Path:        src,
		Destination: dest,
		Rename:      true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	name := filepath.Base(results[0])
	// 36-character UUID plus the extension, case preserved.
	assert.Len(t, name, 40)
	assert.True(t, strings.HasSuffix(name, ".JPG"), "got %s", name)

	copied, err := os.ReadFile(results[0])
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(copied))
}

func TestProcess_RenameWithoutExtension(t *testing.T) {
	src := writeSource(t, t.TempDir(), "README", "text")

	results, err := New(christmas2020).Process(Config{
		Path:        src,
		Destination: t.TempDir(),
		Rename:      true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, filepath.Base(results[0]), 36)
}

func TestProcess_DuplicateSkipped(t *testing.T) {
	src := writeSource(t, t.TempDir(), "dup.bin", "test content")
	dest := t.TempDir()

	m := &manifest.Manifest{
		Checksums: []string{"6ae8a75555209fd6c44157c0aed8016e763ff435a19cf186f76863140143ff72"},
		Algorithm: manifest.SHA256,
	}

	var events []Event
	p := New(christmas2020, WithProgress(func(ev Event) { events = append(events, ev) }))

	results, err := p.Process(Config{Path: src, Destination: dest, Manifest: m})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// A duplicate yields the source path and copies nothing.
	assert.Equal(t, src, results[0])
	_, err = os.Stat(filepath.Join(dest, "2020"))
	assert.True(t, os.IsNotExist(err), "duplicate must not create date directories")

	require.Len(t, events, 1)
	assert.True(t, events[0].Duplicate)
	assert.Equal(t, src, events[0].Source)
	assert.Zero(t, events[0].Bytes)
}

func TestProcess_OverwritesExisting(t *testing.T) {
	src := writeSource(t, t.TempDir(), "photo.jpg", "new bytes")
	dest := t.TempDir()

	existingDir := filepath.Join(dest, "2020", "12", "26")
	require.NoError(t, os.MkdirAll(existingDir, 0o755))
	existing := filepath.Join(existingDir, "photo.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("old bytes that are longer"), 0o644))

	results, err := New(christmas2020).Process(Config{Path: src, Destination: dest})
	require.NoError(t, err)
	require.Len(t, results, 1)

	copied, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new bytes", string(copied))
}

func TestProcess_ProgressEvents(t *testing.T) {
	srcDir := t.TempDir()
	writeSource(t, srcDir, "a.txt", "aaa")
	writeSource(t, srcDir, "b.txt", "bb")

	var events []Event
	p := New(christmas2020, WithProgress(func(ev Event) { events = append(events, ev) }))

	_, err := p.Process(Config{Path: srcDir, Destination: t.TempDir(), Recursive: true})
	require.NoError(t, err)
	require.Len(t, events, 2)

	var total int64
	for _, ev := range events {
		assert.False(t, ev.Duplicate)
		total += ev.Bytes
	}
	assert.Equal(t, int64(5), total)
}

func TestDestName(t *testing.T) {
	name, err := destName("/tmp/photo.jpg", false)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", name)

	_, err = destName("/", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFileName)

	_, err = destName("..", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFileName)
}
