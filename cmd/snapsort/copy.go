package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jamesainslie/snapsort/pkg/snapsort/archive"
	"github.com/jamesainslie/snapsort/pkg/snapsort/config"
	"github.com/jamesainslie/snapsort/pkg/snapsort/dates"
	"github.com/jamesainslie/snapsort/pkg/snapsort/manifest"
	"github.com/jamesainslie/snapsort/pkg/snapsort/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var copyCmd = &cobra.Command{
	Use:   "copy <source> [destination]",
	Short: "Copy files into a date-partitioned archive",
	Long: `Copy a file, or a directory tree with --recursive, into the destination
under a YYYY/MM/DD hierarchy derived from each file's resolved date.

The destination defaults to the current directory. With --manifest, files
whose checksum appears in the manifest are skipped. With --rename, each
copied file gets a fresh UUID name, keeping its original extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCopy,
}

func init() {
	copyCmd.Flags().BoolP("recursive", "r", false, "descend into directories")
	copyCmd.Flags().BoolP("rename", "m", false, "rename copied files to fresh UUIDs")
	copyCmd.Flags().StringP("manifest", "c", "", "checksum manifest for duplicate detection")

	_ = viper.BindPFlag("copy.recursive", copyCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("copy.rename", copyCmd.Flags().Lookup("rename"))
	_ = viper.BindPFlag("copy.manifest", copyCmd.Flags().Lookup("manifest"))

	rootCmd.AddCommand(copyCmd)
}

// runCopy is the copy command handler.
func runCopy(_ *cobra.Command, args []string) error {
	source, err := config.ExpandPath(args[0])
	if err != nil {
		return err
	}

	destination := viper.GetString("copy.destination")
	if len(args) > 1 {
		destination = args[1]
	}
	destination, err = config.ExpandPath(destination)
	if err != nil {
		return err
	}

	var mf *manifest.Manifest
	if manifestPath := viper.GetString("copy.manifest"); manifestPath != "" {
		manifestPath, err = config.ExpandPath(manifestPath)
		if err != nil {
			return err
		}
		mf, err = manifest.Load(manifestPath)
		if err != nil {
			return err
		}
	}

	var records []output.FileRecord
	pipeline := archive.New(dates.NewResolver(), archive.WithProgress(func(ev archive.Event) {
		records = append(records, output.FileRecord{
			Source:    ev.Source,
			Dest:      ev.Dest,
			Size:      ev.Bytes,
			SizeHuman: output.HumanSize(ev.Bytes),
			Duplicate: ev.Duplicate,
		})
	}))

	start := time.Now()
	if _, err := pipeline.Process(archive.Config{
		Path:        source,
		Destination: destination,
		Recursive:   viper.GetBool("copy.recursive"),
		Rename:      viper.GetBool("copy.rename"),
		Manifest:    mf,
	}); err != nil {
		return err
	}

	result := buildResult(records, source, destination, time.Since(start))
	return printResult(result)
}

// buildResult assembles the output result from per-file records.
func buildResult(records []output.FileRecord, source, destination string, elapsed time.Duration) *output.Result {
	stats := output.Stats{
		FilesProcessed: len(records),
		Duration:       elapsed,
	}
	for _, rec := range records {
		if rec.Duplicate {
			stats.DuplicatesSkipped++
			continue
		}
		stats.FilesCopied++
		stats.BytesCopied += rec.Size
	}

	return &output.Result{
		Files:       records,
		Stats:       stats,
		Source:      source,
		Destination: destination,
	}
}

// printResult formats and prints a result using the configured formatter.
func printResult(result *output.Result) error {
	format := viper.GetString("output")
	if format == "" {
		format = config.DefaultOutput
	}

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if !getQuiet() {
		fmt.Print(buf.String())
	}
	return nil
}
