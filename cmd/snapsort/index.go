package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jamesainslie/snapsort/pkg/snapsort/config"
	"github.com/jamesainslie/snapsort/pkg/snapsort/indexer"
	"github.com/jamesainslie/snapsort/pkg/snapsort/manifest"
	"github.com/jamesainslie/snapsort/pkg/snapsort/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Generate a checksum manifest for an archive tree",
	Long: `Hash every regular file under a directory and write a checksum manifest
that the copy command can consume for duplicate detection.

The manifest filename carries the algorithm marker (e.g. manifest-sha256.txt)
so that it is detected unambiguously when loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringP("algorithm", "a", "", "digest algorithm (md5, sha256, sha512)")
	indexCmd.Flags().StringP("out", "O", "", "manifest output path (default: manifest-<algorithm>.txt)")

	_ = viper.BindPFlag("index.algorithm", indexCmd.Flags().Lookup("algorithm"))

	rootCmd.AddCommand(indexCmd)
}

// runIndex is the index command handler.
func runIndex(cmd *cobra.Command, args []string) error {
	root, err := config.ExpandPath(args[0])
	if err != nil {
		return err
	}

	algName := viper.GetString("index.algorithm")
	if algName == "" {
		algName = config.DefaultAlgorithm
	}
	alg, err := manifest.ParseAlgorithm(algName)
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = indexer.DefaultManifestName(alg)
	}

	entries, err := indexer.New(alg).Index(context.Background(), root)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}

	if err := indexer.WriteManifest(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outPath, err)
	}

	var totalBytes int64
	for _, e := range entries {
		totalBytes += e.Size
	}
	printInfo("indexed %d files (%s) into %s", len(entries), output.HumanSize(totalBytes), outPath)
	return nil
}
