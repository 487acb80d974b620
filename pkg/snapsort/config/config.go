package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// CopySettings configures the copy command.
type CopySettings struct {
	Destination string `mapstructure:"destination"`
	Recursive   bool   `mapstructure:"recursive"`
	Rename      bool   `mapstructure:"rename"`
	Manifest    string `mapstructure:"manifest"`
}

// IndexSettings configures manifest generation.
type IndexSettings struct {
	Algorithm string `mapstructure:"algorithm"`
}

// WatchSettings configures watch mode.
type WatchSettings struct {
	Settle string `mapstructure:"settle"`
}

// LoggingSettings configures application logging.
type LoggingSettings struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	Output  string          `mapstructure:"output"`
	Copy    CopySettings    `mapstructure:"copy"`
	Index   IndexSettings   `mapstructure:"index"`
	Watch   WatchSettings   `mapstructure:"watch"`
	Logging LoggingSettings `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/snapsort/config.yaml
//   - $HOME/.config/snapsort/config.yaml
//
// Environment variables are prefixed with SNAPSORT_ (e.g. SNAPSORT_OUTPUT).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "snapsort"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "snapsort"))

	v.SetEnvPrefix("SNAPSORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers the default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("copy.destination", DefaultDestination)
	v.SetDefault("copy.recursive", false)
	v.SetDefault("copy.rename", false)
	v.SetDefault("copy.manifest", "")
	v.SetDefault("index.algorithm", DefaultAlgorithm)
	v.SetDefault("watch.settle", DefaultSettle)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "snapsort"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "snapsort"), nil
}

// StateDir returns $XDG_STATE_HOME/snapsort/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "snapsort")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# snapsort configuration

# Output format for copy results: plain, json
output: %s

copy:
  # Default archive destination when none is given on the command line
  destination: %s
  # Descend into directories
  recursive: false
  # Replace destination filenames with fresh UUIDs
  rename: false
  # Checksum manifest consulted for duplicate detection (empty disables)
  manifest: ""

index:
  # Digest algorithm for generated manifests: md5, sha256, sha512
  algorithm: %s

watch:
  # How long a new file's size must stay stable before it is archived
  settle: %s

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means console only)
  path: ""
`, DefaultOutput, DefaultDestination, DefaultAlgorithm, DefaultSettle, DefaultLogLevel)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands a leading ~ or ~/ to the user's home directory.
// Other tilde forms such as ~user are passed through unchanged.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
