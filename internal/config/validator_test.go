package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateModel(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateModel("llama3.2"))
	assert.NoError(t, v.ValidateModel("mistral:7b-instruct"))
	assert.Error(t, v.ValidateModel(""))
	assert.Error(t, v.ValidateModel("bad model"))
}

func TestValidateWordCount(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		count     int
		shouldErr bool
	}{
		{"default", 150, false},
		{"lower bound", 10, false},
		{"upper bound", 1000, false},
		{"too small", 9, true},
		{"too large", 1001, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateWordCount(tt.count)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTemperature(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateTemperature(1.2))
	assert.NoError(t, v.ValidateTemperature(2.0))
	assert.Error(t, v.ValidateTemperature(0))
	assert.Error(t, v.ValidateTemperature(-0.5))
	assert.Error(t, v.ValidateTemperature(2.1))
}

func TestValidate_WholeConfig(t *testing.T) {
	v := NewValidator()

	cfg := DefaultConfig()
	assert.NoError(t, v.Validate(cfg))

	cfg.Store.LockTimeout = -1
	assert.Error(t, v.Validate(cfg))

	cfg = DefaultConfig()
	cfg.Ollama.Model = ""
	assert.Error(t, v.Validate(cfg))
}
