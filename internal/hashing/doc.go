// Package hashing computes streaming SHA-256 digests and verifies that a
// copied file is byte-identical to its source.
//
// Every integrity decision in the pipeline (sort verification, pre-delete
// re-verification during cleanup) goes through this package. VerifyCopy
// accepts either a source path or a pre-computed digest so batch flows can
// reuse the hash captured at scan time without re-reading a source that may
// have since been altered or removed.
package hashing
