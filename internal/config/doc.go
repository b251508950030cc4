// Package config loads and validates photosort configuration from TOML.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/photosort/config.toml, then ./photosort.toml; missing files fall
// back to defaults. All path fields are ~-expanded and made absolute during
// normalization, and the resulting Config is passed into constructors rather
// than consulted through globals so tests can inject temp directories.
package config
