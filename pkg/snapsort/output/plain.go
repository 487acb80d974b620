package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table followed by
// a one-line summary. It produces plain text suitable for scripting and
// piping; no colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	for _, file := range r.Files {
		status := file.SizeHuman
		if file.Duplicate {
			status = "duplicate"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", status, file.Source, file.Dest); err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "copied %d of %d files (%s)", r.Stats.FilesCopied, r.Stats.FilesProcessed, HumanSize(r.Stats.BytesCopied))
	if r.Stats.DuplicatesSkipped > 0 {
		fmt.Fprintf(w, ", skipped %d duplicates", r.Stats.DuplicatesSkipped)
	}
	fmt.Fprintln(w)

	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
