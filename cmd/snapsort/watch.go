package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesainslie/snapsort/pkg/snapsort/archive"
	"github.com/jamesainslie/snapsort/pkg/snapsort/config"
	"github.com/jamesainslie/snapsort/pkg/snapsort/dates"
	"github.com/jamesainslie/snapsort/pkg/snapsort/manifest"
	"github.com/jamesainslie/snapsort/pkg/snapsort/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:   "watch <inbox> [destination]",
	Short: "Watch a directory and archive new files as they arrive",
	Long: `Watch an inbox directory and copy each new file into the destination's
date-partitioned hierarchy once its size has been stable for the settle
window. Files already in the inbox at startup are archived too.

Runs until interrupted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolP("rename", "m", false, "rename copied files to fresh UUIDs")
	watchCmd.Flags().StringP("manifest", "c", "", "checksum manifest for duplicate detection")
	watchCmd.Flags().Duration("settle", 0, "size-stability window before archiving (default 500ms)")

	rootCmd.AddCommand(watchCmd)
}

// runWatch is the watch command handler.
func runWatch(cmd *cobra.Command, args []string) error {
	inbox, err := config.ExpandPath(args[0])
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

	rename, err := cmd.Flags().GetBool("rename")
	if err != nil {
		return err
	}

	var mf *manifest.Manifest
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return err
	}
	if manifestPath != "" {
		manifestPath, err = config.ExpandPath(manifestPath)
		if err != nil {
			return err
		}
		mf, err = manifest.Load(manifestPath)
		if err != nil {
			return err
		}
	}

	settle, err := cmd.Flags().GetDuration("settle")
	if err != nil {
		return err
	}
	if settle <= 0 {
		settle, err = time.ParseDuration(viper.GetString("watch.settle"))
		if err != nil {
			return err
		}
	}

	pipeline := archive.New(dates.NewResolver(), archive.WithProgress(func(ev archive.Event) {
		if ev.Duplicate {
			printInfo("%s (duplicate)", ev.Source)
			return
		}
		printInfo("%s -> %s", ev.Source, ev.Dest)
	}))

	watcher, err := watch.New(func(path string) error {
		_, err := pipeline.Process(archive.Config{
			Path:        path,
			Destination: destination,
			Rename:      rename,
			Manifest:    mf,
		})
		return err
	}, watch.Options{Settle: settle})
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Watch(inbox); err != nil {
		return err
	}

	printInfo("watching %s (archiving to %s)", inbox, destination)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
