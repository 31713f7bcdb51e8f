// Package syncrun coordinates inventory sync runs.
//
// The Coordinator owns the run state machine
//
//	Idle -> Running -> {Succeeded, PartiallyFailed, Aborted} -> Idle
//
// and the single-flight guarantee: Trigger starts a run only when no other run holds
// the shared lock, otherwise it fails with an *AlreadyRunningError naming the active
// run. A run reads the whole feed, diffs it against the catalog and applies the
// change set. A feed failure aborts the run before anything is written. A timeout or
// cancellation stops at the next item boundary and leaves applied items in place.
//
// A terminal run returns the coordinator to Idle once its report has been read through
// Status, or after the report TTL. Runs are persisted through a Repository so their
// status stays queryable after the coordinator has moved on; an Archive can keep
// reports in object storage as well.
package syncrun
