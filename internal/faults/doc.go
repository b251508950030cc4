// Package faults defines the shared error taxonomy for the sorting pipeline.
//
// Each failure class is a sentinel error that callers test with errors.Is;
// Wrap tags an error with its class plus component/operation context so a
// single message carries both classification and provenance. Conflict and
// integrity mismatches additionally surface as fields on result structs
// because the CLI reacts to them differently from generic failures.
package faults
