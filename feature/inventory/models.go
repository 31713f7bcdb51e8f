package inventory

// TriggerResponse is returned by POST /sync/trigger.
type TriggerResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	RunID    string `json:"runId"`
}

// CancelResponse is returned by POST /sync/cancel.
type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	RunID     string `json:"runId"`
}

// ErrorResponse carries a handler error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReasonAlreadyRunning is the rejection reason of a trigger during an active run.
const ReasonAlreadyRunning = "AlreadyRunning"
