// Package main hosts the patenttrack CLI entrypoint and command graph.
//
// The Cobra-based command tree covers portfolio imports, run triggering and
// queue inspection, and the read-side views over analysis results: the
// per-organization status overview, the chain-of-title dashboard, the
// assignment timeline, and the entity roster. It centralizes configuration
// resolution so subcommands can focus on presentation.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
