// Package services provides the shared error taxonomy and context
// annotation helpers used by the pipeline stages and the workflow manager.
//
// Errors returned from stage handlers are tagged with one of the sentinel
// markers below so the workflow manager can decide between retrying with
// backoff (transient/storage failures) and failing the run immediately
// (validation, configuration, and logic errors).
package services
