package queue

import "errors"

// ErrRunActive is returned when a new run is requested for an
// organization that already has a waiting or active run. Interleaved
// runs for the same organization would corrupt the steps-completed
// ledger, so triggers are rejected rather than queued behind it.
var ErrRunActive = errors.New("organization already has an active pipeline run")
