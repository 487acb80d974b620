package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/snapsort/pkg/snapsort/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage snapsort configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/snapsort/config.yaml (if set)
  2. ~/.config/snapsort/config.yaml

Environment variables can override config file settings using the SNAPSORT_
prefix:
  SNAPSORT_OUTPUT=json
  SNAPSORT_COPY_DESTINATION=~/archive
  SNAPSORT_INDEX_ALGORITHM=sha512`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// effectiveConfig unmarshals the fully resolved settings from the global
// viper, so that --config files and flag overrides are reflected.
func effectiveConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig()
	if err != nil {
		return err
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("output:            %s\n", cfg.Output)
	fmt.Printf("copy.destination:  %s\n", cfg.Copy.Destination)
	fmt.Printf("copy.recursive:    %t\n", cfg.Copy.Recursive)
	fmt.Printf("copy.rename:       %t\n", cfg.Copy.Rename)
	fmt.Printf("copy.manifest:     %s\n", cfg.Copy.Manifest)
	fmt.Printf("index.algorithm:   %s\n", cfg.Index.Algorithm)
	fmt.Printf("watch.settle:      %s\n", cfg.Watch.Settle)
	fmt.Printf("logging.level:     %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:      %s\n", cfg.Logging.Path)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"SNAPSORT_OUTPUT",
		"SNAPSORT_COPY_DESTINATION",
		"SNAPSORT_COPY_RECURSIVE",
		"SNAPSORT_COPY_RENAME",
		"SNAPSORT_COPY_MANIFEST",
		"SNAPSORT_INDEX_ALGORITHM",
		"SNAPSORT_WATCH_SETTLE",
		"SNAPSORT_LOGGING_LEVEL",
		"SNAPSORT_LOGGING_PATH",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	fmt.Println(filepath.Join(configDir, "config.yaml"))
	return nil
}
