package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceRoot      string `toml:"source_root"`
	DestinationRoot string `toml:"destination_root"`
	DataDir         string `toml:"data_dir"`
	LogDir          string `toml:"log_dir"`
}

// Sorting contains tuning for manifest creation and the sort pipeline.
type Sorting struct {
	// HashWorkers bounds the number of files hashed concurrently during a scan.
	HashWorkers int `toml:"hash_workers"`
}

// Defaults contains prefill values for sort metadata the operator rarely changes.
type Defaults struct {
	Procedure     string `toml:"procedure"`
	ImageType     string `toml:"image_type"`
	Angle         string `toml:"angle"`
	ConsentStatus string `toml:"consent_status"`
	Surgeon       string `toml:"surgeon"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photosort.
//
// Configuration sections by subsystem:
//   - Paths: source/destination roots and local state directories
//   - Sorting: scan concurrency
//   - Defaults: prefill values for sort metadata
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sorting  Sorting  `toml:"sorting"`
	Defaults Defaults `toml:"defaults"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photosort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photosort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, creating
// parent directories as needed. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ManifestDir returns the directory that holds persisted manifests.
func (c *Config) ManifestDir() string {
	return filepath.Join(c.Paths.DataDir, "manifests")
}

// DatabasePath returns the SQLite database path for patient/procedure/surgeon records.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "records.db")
}

// LockPath returns the lock file guarding mutating batch operations.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "photosort.lock")
}

// EnsureDirectories creates the local state directories. The destination root
// is created on a best-effort basis so commands that never write there still
// run when external storage is offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.ManifestDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.DestinationRoot) != "" {
		_ = os.MkdirAll(c.Paths.DestinationRoot, 0o755)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory and returns an
// absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
