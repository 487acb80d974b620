package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Format_BasicOutput(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileRecord{
			{Source: "/inbox/photo.jpg", Dest: "/archive/2020/12/26/photo.jpg", Size: 1048576, SizeHuman: "1.0 MiB"},
			{Source: "/inbox/video.mp4", Dest: "/archive/2020/12/26/video.mp4", Size: 536870912, SizeHuman: "512 MiB"},
		},
		Stats: Stats{
			FilesProcessed: 2,
			FilesCopied:    2,
			BytesCopied:    537919488,
			Duration:       time.Second,
		},
		Source:      "/inbox",
		Destination: "/archive",
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")

	// Two file rows plus the summary line.
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "1.0 MiB")
	assert.Contains(t, lines[0], "/inbox/photo.jpg")
	assert.Contains(t, lines[0], "/archive/2020/12/26/photo.jpg")
	assert.Contains(t, lines[1], "512 MiB")
	assert.Contains(t, lines[2], "copied 2 of 2 files")
}

func TestPlainFormatter_Format_Duplicates(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileRecord{
			{Source: "/inbox/dup.jpg", Dest: "/inbox/dup.jpg", Duplicate: true},
			{Source: "/inbox/new.jpg", Dest: "/archive/2020/12/26/new.jpg", Size: 100, SizeHuman: "100 B"},
		},
		Stats: Stats{
			FilesProcessed:    2,
			FilesCopied:       1,
			DuplicatesSkipped: 1,
			BytesCopied:       100,
		},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "duplicate")
	assert.Contains(t, output, "skipped 1 duplicates")
}

func TestPlainFormatter_Format_EmptyResult(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Files: []FileRecord{},
		Stats: Stats{Duration: time.Second},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "copied 0 of 0 files")
}
