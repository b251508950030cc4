// Package lockfile serializes mutating batch operations across photosort
// processes with an advisory file lock. Two concurrent invocations against
// the same data directory would race on manifest writes and source deletes;
// the lock turns the second invocation into an immediate, explainable error.
package lockfile
