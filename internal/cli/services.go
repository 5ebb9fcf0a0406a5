package cli

import (
	"fmt"
	"net/http"

	"github.com/hikaru/emojitale/internal/config"
	"github.com/hikaru/emojitale/internal/logger"
	"github.com/hikaru/emojitale/pkg/ollama"
	"github.com/hikaru/emojitale/pkg/sampler"
	"github.com/hikaru/emojitale/pkg/store"
)

// services bundles the constructed core collaborators for one command
// invocation. One process run is one sampler lifetime.
type services struct {
	cfg     *config.Config
	logger  *logger.Logger
	store   *store.Store
	sampler *sampler.Sampler
	ollama  *ollama.Client
}

// newServices loads configuration, builds the logger, and constructs
// the store, sampler and generation client from it.
func newServices() (*services, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	lg, err := logger.New(logger.Config{
		Level:   level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.JournalPath(),
		store.WithLockTimeout(cfg.Store.LockTimeoutDuration()),
		store.WithLogger(lg.Zerolog()),
	)
	if err != nil {
		lg.Close()
		return nil, err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		lg.Close()
		return nil, err
	}
	smp, err := sampler.New(catalog, sampler.WithLogger(lg.Zerolog()))
	if err != nil {
		lg.Close()
		return nil, err
	}

	oc := ollama.New(
		ollama.WithBaseURL(cfg.Ollama.BaseURL),
		ollama.WithModel(cfg.Ollama.Model),
		ollama.WithHTTPClient(&http.Client{Timeout: cfg.Ollama.TimeoutDuration()}),
		ollama.WithLogger(lg.Zerolog()),
	)

	return &services{
		cfg:     cfg,
		logger:  lg,
		store:   st,
		sampler: smp,
		ollama:  oc,
	}, nil
}

func loadCatalog(cfg *config.Config) (*sampler.Catalog, error) {
	if cfg.CatalogPath == "" {
		return sampler.DefaultCatalog()
	}
	return sampler.LoadCatalog(cfg.CatalogPath)
}

// Close releases the services' resources.
func (s *services) Close() {
	if s.logger != nil {
		s.logger.Close()
	}
}
