// Package queue persists pipeline runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stale-run recovery, and the status
// transitions the workflow manager relies on. A run records which
// organization it analyzes, its trigger, the steps already completed,
// and retry bookkeeping so workers can resume a partially finished run
// after a crash.
//
// The database is treated as transient storage for in-flight work rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue
