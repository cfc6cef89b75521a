package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"earmark/internal/config"
	"earmark/internal/corpus"
	"earmark/internal/locator"
	"earmark/internal/logging"
	"earmark/internal/services/openaiembed"
	"earmark/internal/vectorstore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath returns the explicit --config value, empty when unset.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// openCorpus opens the index database and wraps it in a corpus manager.
// The returned closer must be called when the command finishes.
func (c *commandContext) openCorpus(ctx context.Context) (*corpus.Manager, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}

	store, err := vectorstore.Open(cfg.IndexDBPath())
	if err != nil {
		return nil, nil, err
	}
	manager, err := corpus.New(ctx, store, cfg.ReplaceLockPath(), logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return manager, func() { _ = store.Close() }, nil
}

// openService builds the full locator stack, including the embedding
// client. Commands that never embed should use openCorpus instead so they
// work without an API key.
func (c *commandContext) openService(ctx context.Context) (*locator.Service, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}

	embedder, err := openaiembed.New(cfg.OpenAI, logger)
	if err != nil {
		return nil, nil, err
	}
	manager, closer, err := c.openCorpus(ctx)
	if err != nil {
		return nil, nil, err
	}
	return locator.NewService(cfg, embedder, manager, logger), closer, nil
}
