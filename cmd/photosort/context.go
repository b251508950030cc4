package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"photosort/internal/config"
	"photosort/internal/lockfile"
	"photosort/internal/logging"
	"photosort/internal/manifest"
	"photosort/internal/records"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) manifestStore() (*manifest.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return manifest.NewStoreFromConfig(cfg, logger), nil
}

func (c *commandContext) openRecords() (*records.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return records.OpenFromConfig(cfg)
}

// acquireLock guards every command that mutates manifests or source files.
// Read-only commands (status, patients list) skip it.
func (c *commandContext) acquireLock() (*lockfile.Lock, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return lockfile.Acquire(cfg.LockPath())
}

// resolveManifest returns the manifest named by batchID, or the most recent
// active manifest when batchID is empty.
func (c *commandContext) resolveManifest(store *manifest.Store, batchID string) (*manifest.Manifest, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID != "" {
		m, err := store.Load(batchID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("no batch with id %s", batchID)
		}
		return m, nil
	}

	m, err := store.Active()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no active batch; run `photosort scan` first")
	}
	return m, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
