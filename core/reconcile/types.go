package reconcile

// Record is one inventory item as delivered by the feed.
// It is an immutable snapshot of the source's view at fetch time.
type Record struct {
	// Key is the natural key (e.g. the certificate number).
	Key string `json:"key"`

	// Attributes maps attribute names (carat, color, clarity, price, ...) to values.
	Attributes map[string]any `json:"attributes"`
}

// Item is a classified record ready to be written to the catalog.
type Item struct {
	// Key is the natural key.
	Key string

	// Attributes is the new attribute mapping.
	Attributes map[string]any

	// Hash is the content hash of Attributes.
	Hash string
}

// ErrorKind classifies a per-item failure.
type ErrorKind string

const (
	// KindInvalidKey marks a record whose key is empty or duplicated within the feed.
	KindInvalidKey ErrorKind = "InvalidKey"
	// KindApplyFailure marks an item the catalog store rejected.
	KindApplyFailure ErrorKind = "ApplyFailure"
)

// Failure records an item that could not be classified or applied.
type Failure struct {
	Key       string    `json:"key"`
	ErrorKind ErrorKind `json:"errorKind"`
	Message   string    `json:"message"`
}

// ChangeSet is the classified difference between the feed and the catalog.
// ToCreate, ToUpdate, Unchanged and ToRemove partition the union of valid feed keys
// and catalog keys, minus keys whose first feed record could not be hashed.
// Invalid holds records excluded from classification.
type ChangeSet struct {
	ToCreate  []Item
	ToUpdate  []Item
	Unchanged []string
	ToRemove  []string
	Invalid   []Failure
}

// Outcome is the overall result of a run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeAborted Outcome = "aborted"
)

// Report summarizes what a run applied.
type Report struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`

	// Failures lists failed items in the order they were encountered.
	Failures []Failure `json:"failures"`

	Outcome Outcome `json:"outcome"`

	// AbortReason explains why an aborted run stopped.
	AbortReason string `json:"abortReason,omitempty"`
}

// Fail appends a failure and keeps the failed counter in step.
func (r *Report) Fail(f Failure) {
	r.Failures = append(r.Failures, f)
	r.Failed = len(r.Failures)
}

// Finalize sets the outcome from the failure list.
func (r *Report) Finalize() {
	if r.Failures == nil {
		r.Failures = []Failure{}
	}
	r.Failed = len(r.Failures)
	if r.Failed == 0 {
		r.Outcome = OutcomeSuccess
		return
	}
	r.Outcome = OutcomePartial
}

// Abort marks the report as aborted with the given reason.
func (r *Report) Abort(reason string) {
	r.Finalize()
	r.Outcome = OutcomeAborted
	r.AbortReason = reason
}

// Options controls how a change set is applied.
type Options struct {
	// TouchBatchSize bounds how many unchanged keys are refreshed per store call.
	TouchBatchSize int
}
