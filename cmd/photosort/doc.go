// Package main hosts the photosort CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the whole batch lifecycle: scanning a
// source folder into a manifest, sorting and skipping individual images,
// inspecting batch status, running the verified cleanup pass, and maintaining
// patient records. It centralizes configuration resolution, logging setup,
// and the cross-process lock so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
