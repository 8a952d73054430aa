// Package config loads askql configuration from file, environment, and
// CLI flags.
package config

// Config is the resolved application configuration.
type Config struct {
	// DatasetPath is the CSV file loaded as the dataset.
	DatasetPath string `koanf:"dataset" yaml:"dataset"`

	// DateColumn names the column parsed as dates.
	DateColumn string `koanf:"date_column" yaml:"date_column"`

	// Port is the HTTP listen port for serve.
	Port int `koanf:"port" yaml:"port"`

	// Model selects the remote generator model. The remote generator is
	// only used when an API key is present in the environment.
	Model string `koanf:"model" yaml:"model"`

	// MaxTokens caps the remote generator response size.
	MaxTokens int64 `koanf:"max_tokens" yaml:"max_tokens"`

	// Output is the default rendering format for CLI results.
	Output string `koanf:"output" yaml:"output"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose" yaml:"verbose"`
}
