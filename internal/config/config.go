// Package config defines and loads the EmojiTale configuration. All
// paths are explicit: components receive their base directories from
// here instead of relying on the process working directory.
package config

import (
	"time"
)

// Config is the main EmojiTale configuration.
type Config struct {
	// DataDir holds the session journal and default log location.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// CatalogPath points at a symbol:label emoji list. Empty selects the
	// embedded default catalog.
	CatalogPath string `json:"catalog_path" mapstructure:"catalog_path"`

	// Store configures journal behavior.
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Ollama configures the story generation client.
	Ollama OllamaConfig `json:"ollama" mapstructure:"ollama"`

	// Logging configures the process logger.
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// StoreConfig holds session journal settings.
type StoreConfig struct {
	// LockTimeout bounds the wait for the inter-process journal lock,
	// in seconds. Zero blocks indefinitely.
	LockTimeout int `json:"lock_timeout" mapstructure:"lock_timeout"`
}

// OllamaConfig holds generation client settings.
type OllamaConfig struct {
	BaseURL     string  `json:"base_url" mapstructure:"base_url"`
	Model       string  `json:"model" mapstructure:"model"`
	WordCount   int     `json:"word_count" mapstructure:"word_count"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	Timeout     int     `json:"timeout" mapstructure:"timeout"` // seconds
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// LockTimeoutDuration returns the journal lock bound as a duration.
func (c StoreConfig) LockTimeoutDuration() time.Duration {
	return time.Duration(c.LockTimeout) * time.Second
}

// TimeoutDuration returns the generation timeout as a duration.
func (c OllamaConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Ollama: OllamaConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.2",
			WordCount:   150,
			Temperature: 1.2,
			Timeout:     300,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}
