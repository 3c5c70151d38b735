// Package api assembles the read-side views and one-shot workflows the
// CLI consumes. It translates queue and intel store models into
// display-friendly records so commands never couple to storage types,
// and it owns the open-use-close store lifecycle for one-shot commands.
package api
