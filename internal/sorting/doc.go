// Package sorting copies one clinical photograph from the source folder to
// its computed destination with integrity verification.
//
// The destination mapping is the on-disk schema contract: path layout and
// filename are a pure function of the sort metadata, so any two runs over the
// same inputs land in the same place. The copy itself goes through a sibling
// temp file that is hashed against the source digest and only renamed over
// the final name on a match, so a crash at any point leaves no partial file
// at a canonical path. Source files are never touched here; deletion belongs
// to the cleanup engine.
package sorting
