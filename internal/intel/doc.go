// Package intel persists per-organization analysis state in SQLite: the
// monitored asset set, classified assignments, and the derived dashboard,
// timeline, entity, and summary rows the pipeline recomputes each run.
//
// Every write is an upsert keyed by a natural key (organization plus
// patent, date, or reel/frame), so a retried pipeline stage converges on
// the same end state instead of duplicating rows. Reads are batched per
// organization; stages stitch related rows in memory rather than issuing
// per-record queries.
package intel
