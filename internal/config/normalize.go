package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSorting()
	c.normalizeDefaults()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceRoot, err = expandPath(c.Paths.SourceRoot); err != nil {
		return fmt.Errorf("paths.source_root: %w", err)
	}
	if c.Paths.DestinationRoot, err = expandPath(c.Paths.DestinationRoot); err != nil {
		return fmt.Errorf("paths.destination_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSorting() {
	if c.Sorting.HashWorkers <= 0 {
		c.Sorting.HashWorkers = defaultHashWorkers
	}
}

func (c *Config) normalizeDefaults() {
	c.Defaults.Procedure = strings.TrimSpace(c.Defaults.Procedure)
	c.Defaults.ImageType = strings.TrimSpace(c.Defaults.ImageType)
	c.Defaults.Angle = strings.TrimSpace(c.Defaults.Angle)
	c.Defaults.Surgeon = strings.TrimSpace(c.Defaults.Surgeon)
	c.Defaults.ConsentStatus = strings.ToLower(strings.TrimSpace(c.Defaults.ConsentStatus))
	if c.Defaults.ConsentStatus == "" {
		c.Defaults.ConsentStatus = defaultConsentStatus
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
