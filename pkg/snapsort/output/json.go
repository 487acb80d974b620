package output

import (
	"bytes"
	"encoding/json"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Files []FileRecord `json:"files"`
	Stats jsonStats    `json:"stats"`
	Meta  jsonMeta     `json:"meta"`
}

// jsonStats represents run statistics in JSON output.
type jsonStats struct {
	FilesProcessed    int    `json:"files_processed"`
	FilesCopied       int    `json:"files_copied"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
	BytesCopied       int64  `json:"bytes_copied"`
	BytesCopiedHuman  string `json:"bytes_copied_human"`
	Duration          string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// JSONFormatter formats output as indented JSON.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	files := r.Files
	if files == nil {
		files = []FileRecord{}
	}

	out := jsonOutput{
		Files: files,
		Stats: jsonStats{
			FilesProcessed:    r.Stats.FilesProcessed,
			FilesCopied:       r.Stats.FilesCopied,
			DuplicatesSkipped: r.Stats.DuplicatesSkipped,
			BytesCopied:       r.Stats.BytesCopied,
			BytesCopiedHuman:  HumanSize(r.Stats.BytesCopied),
			Duration:          r.Stats.Duration.String(),
		},
		Meta: jsonMeta{
			Source:      r.Source,
			Destination: r.Destination,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
