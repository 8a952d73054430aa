package config

import "fmt"

var validOutputs = map[string]bool{
	"table": true,
	"json":  true,
	"csv":   true,
}

// Validate checks a resolved configuration for values that cannot work.
func Validate(cfg *Config) error {
	if cfg.DatasetPath == "" {
		return fmt.Errorf("dataset path must not be empty")
	}
	if cfg.DateColumn == "" {
		return fmt.Errorf("date_column must not be empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("unknown output format %q (want table, json, or csv)", cfg.Output)
	}
	return nil
}
