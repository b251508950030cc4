// Package testsupport provides shared helpers for building test
// configurations and fixture files.
package testsupport
