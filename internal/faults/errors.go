package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing file, directory, or record.
	ErrNotFound = errors.New("not found")
	// ErrEmptySource marks a source scan that found no qualifying images.
	ErrEmptySource = errors.New("no images in source")
	// ErrConflict marks a destination file that already exists.
	ErrConflict = errors.New("destination conflict")
	// ErrIntegrity marks a hash verification failure after a copy.
	ErrIntegrity = errors.New("integrity mismatch")
	// ErrAlreadyExists marks a duplicate natural key on create.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation marks malformed or missing required metadata.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = errors.New("failure")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
