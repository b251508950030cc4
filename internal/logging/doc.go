// Package logging constructs slog loggers for photosort and provides typed
// attribute helpers plus standardized field keys so every component logs the
// same vocabulary (component, manifest_id, filename, case_number).
package logging
