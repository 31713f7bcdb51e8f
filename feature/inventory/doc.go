// Package inventory exposes inventory sync over HTTP.
//
// Routes (all under /sync):
//
//	POST /sync/trigger          start a run; 202, or 409 with the active run id
//	GET  /sync/status?runId=    run status and, once finished, its report
//	GET  /sync/state            coordinator state
//	POST /sync/cancel?runId=    cooperative cancellation of the active run
//
// Schedule optionally triggers runs from a cron expression. A tick that finds a run
// in progress is skipped.
package inventory
