// Package config provides configuration management for snapsort.
package config

// Default configuration values.
const (
	// DefaultDestination is the archive root used when none is given.
	DefaultDestination = "."

	// DefaultAlgorithm is the digest algorithm for generated manifests.
	DefaultAlgorithm = "sha256"

	// DefaultSettle is how long a watched file's size must stay stable
	// before it is archived.
	DefaultSettle = "500ms"

	// DefaultOutput is the output format for copy results.
	DefaultOutput = "plain"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"
)
