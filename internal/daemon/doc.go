// Package daemon ties the long-running pieces of patenttrackd together:
// the workflow manager that drives queued analysis runs, the scheduler
// that enqueues periodic refreshes, and the file lock that keeps a host
// down to a single daemon instance.
package daemon
