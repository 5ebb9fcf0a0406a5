package config

import (
	"fmt"
	"strings"
)

const (
	minWordCount = 10
	maxWordCount = 1000

	maxTemperature = 2.0
)

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the whole configuration.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateModel(cfg.Ollama.Model); err != nil {
		return err
	}
	if err := v.ValidateWordCount(cfg.Ollama.WordCount); err != nil {
		return err
	}
	if err := v.ValidateTemperature(cfg.Ollama.Temperature); err != nil {
		return err
	}
	if cfg.Store.LockTimeout < 0 {
		return fmt.Errorf("store lock timeout cannot be negative")
	}
	if cfg.Ollama.Timeout < 0 {
		return fmt.Errorf("ollama timeout cannot be negative")
	}
	return nil
}

// ValidateModel validates a model name.
func (v *Validator) ValidateModel(model string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if strings.ContainsAny(model, " \t\n") {
		return fmt.Errorf("model name cannot contain whitespace")
	}
	return nil
}

// ValidateWordCount validates a story word count target.
func (v *Validator) ValidateWordCount(count int) error {
	if count < minWordCount || count > maxWordCount {
		return fmt.Errorf("word count must be between %d and %d, got %d", minWordCount, maxWordCount, count)
	}
	return nil
}

// ValidateTemperature validates a generation temperature.
func (v *Validator) ValidateTemperature(temp float64) error {
	if temp <= 0 || temp > maxTemperature {
		return fmt.Errorf("temperature must be in (0, %.1f], got %g", maxTemperature, temp)
	}
	return nil
}
