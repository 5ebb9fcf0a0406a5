package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Loader handles configuration loading.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader. An empty path selects
// ~/.emojitale/config.json.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file, falling back to defaults when
// no file exists. EMOJITALE_* environment variables override file
// values.
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".emojitale", "config.json")
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		v := viper.New()
		v.SetConfigFile(configPath)
		v.SetConfigType("json")

		v.SetEnvPrefix("EMOJITALE")
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".emojitale")
	}

	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "emojitale.log")
	}

	return cfg, nil
}

// JournalPath returns the session journal location under the data dir.
func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, "sessions.json")
}
