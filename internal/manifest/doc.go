// Package manifest persists sort-batch snapshots as JSON documents and drives
// their lifecycle.
//
// A Manifest captures one scan of a source folder: every qualifying image with
// its SHA-256 digest, plus a per-image and per-batch status state machine. The
// Store owns all persistence; every mutation rewrites the whole document
// atomically (temp file + rename) before returning, so the manifest file is
// the serialization point for the batch. Manifests are never deleted, only
// moved to a terminal status and kept as audit records.
//
// Treat this package as the single source of truth for batch semantics; the
// sort and cleanup engines mutate images exclusively through UpdateImage so
// the batch status derivation stays consistent.
package manifest
