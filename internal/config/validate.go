package config

import (
	"errors"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceRoot) == "" {
		return errors.New("paths.source_root must be set")
	}
	if strings.TrimSpace(c.Paths.DestinationRoot) == "" {
		return errors.New("paths.destination_root must be set")
	}
	if c.Paths.SourceRoot == c.Paths.DestinationRoot {
		return errors.New("paths.source_root and paths.destination_root must differ")
	}
	return nil
}

func (c *Config) validateDefaults() error {
	switch c.Defaults.ConsentStatus {
	case "no_consent", "consent":
		return nil
	default:
		return errors.New(`defaults.consent_status must be "no_consent" or "consent"`)
	}
}
