package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/snapsort/pkg/snapsort/config"
	"github.com/jamesainslie/snapsort/pkg/snapsort/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "snapsort",
		Short: "Archive photos and media into date-partitioned directories",
		Long: `Snapsort determines a canonical date for each file from its embedded
metadata (falling back to the filesystem modification time) and copies it
into a <destination>/YYYY/MM/DD/ hierarchy.

A checksum manifest can be supplied to skip files that are already
archived, and generated from an existing archive with the index command.

Examples:
  snapsort date IMG_0001.jpg              # Show the resolved date
  snapsort copy IMG_0001.jpg ~/archive    # Archive a single file
  snapsort copy -r ~/inbox ~/archive      # Archive a directory tree
  snapsort copy -r -c manifest-sha256.txt ~/inbox ~/archive
  snapsort index ~/archive                # Generate a manifest
  snapsort watch ~/inbox ~/archive        # Archive new files as they land`,
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/snapsort/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (plain, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "snapsort"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "snapsort"))
		}
	}

	viper.SetEnvPrefix("SNAPSORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging configures the logging system from flags and config.
func initLogging(_ *cobra.Command, _ []string) error {
	level := viper.GetString("logging.level")
	if getVerbose() {
		level = "debug"
	}

	return logging.Init(logging.Config{
		Level:   level,
		Path:    viper.GetString("logging.path"),
		Console: !getQuiet(),
	})
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}
