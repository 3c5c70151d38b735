// Package workflow advances pipeline runs through the configured
// analysis steps.
//
// The Manager polls the queue for eligible runs, claims them atomically,
// and walks each run through the step order, recording a durable
// completion marker after every step so an interrupted run resumes where
// it stopped. Per-step worker semaphores bound how many runs may execute
// the same step concurrently; runs for different organizations otherwise
// proceed in parallel. A heartbeat loop keeps claimed runs visibly
// alive, and the reclaim pass returns runs abandoned by a dead worker to
// the queue, routing repeat offenders to dead_letter.
package workflow
