package main

import (
	"fmt"

	"github.com/jamesainslie/snapsort/pkg/snapsort/config"
	"github.com/jamesainslie/snapsort/pkg/snapsort/dates"
	"github.com/spf13/cobra"
)

var dateCmd = &cobra.Command{
	Use:   "date <file>",
	Short: "Print the resolved date of a file",
	Long: `Print the canonical timestamp of a file: the embedded metadata date
when present, otherwise the filesystem modification time.`,
	Args: cobra.ExactArgs(1),
	RunE: runDate,
}

func init() {
	rootCmd.AddCommand(dateCmd)
}

// runDate resolves and prints the date of a single file.
func runDate(_ *cobra.Command, args []string) error {
	path, err := config.ExpandPath(args[0])
	if err != nil {
		return err
	}

	resolved, err := dates.NewResolver().Resolve(path)
	if err != nil {
		return err
	}

	fmt.Println(resolved.Format("2006-01-02 15:04:05"))
	return nil
}
