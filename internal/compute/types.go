package compute

// JobState is the status reported by the compute backend for a submitted job
type JobState string

// Backend job states
const (
	// StateQueued indicates the job is waiting for a worker
	StateQueued JobState = "IN_QUEUE"
	// StateRunning indicates the job is being processed
	StateRunning JobState = "IN_PROGRESS"
	// StateCompleted indicates the job finished successfully
	StateCompleted JobState = "COMPLETED"
	// StateFailed indicates the job failed
	StateFailed JobState = "FAILED"
	// StateCancelled indicates the job was cancelled on the backend
	StateCancelled JobState = "CANCELLED"
	// StateTimedOut indicates the backend gave up on the job
	StateTimedOut JobState = "TIMED_OUT"
)

// Terminal reports whether the state is an end state on the backend
func (s JobState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateTimedOut:
		return true
	}
	return false
}

// SubmitRequest is the payload for the backend's run endpoint
type SubmitRequest struct {
	Input map[string]interface{} `json:"input"`
}

// SubmitResponse is returned by the run endpoint
type SubmitResponse struct {
	ID     string   `json:"id"`
	Status JobState `json:"status"`
}

// StatusResponse is returned by the status endpoint. Output is left as a
// generic document because different backend workers name their payload
// differently; the services layer owns its interpretation.
type StatusResponse struct {
	ID     string                 `json:"id"`
	Status JobState               `json:"status"`
	Output map[string]interface{} `json:"output,omitempty"`
	Error  string                 `json:"error,omitempty"`
}
