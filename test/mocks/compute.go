package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/mediaforge/mediaforge/internal/compute"
)

// ComputeBackend is a scriptable compute backend double. Submissions are
// assigned sequential external IDs; each job's status walks through the
// configured state sequence, one step per poll, holding at the last entry.
type ComputeBackend struct {
	mu sync.Mutex

	// SubmitErr, when set, is returned by Submit.
	SubmitErr error
	// States is the status sequence every job walks through. Defaults to
	// a single-poll completion.
	States []compute.JobState
	// Output is attached to the terminal status response.
	Output map[string]interface{}
	// StatusError is attached to failed terminal responses.
	StatusError string
	// Files maps file paths to downloadable bytes.
	Files map[string][]byte

	submitted int
	polls     map[string]int
	inputs    []map[string]interface{}
}

// NewComputeBackend creates a backend that completes every job on first poll
func NewComputeBackend() *ComputeBackend {
	return &ComputeBackend{
		States: []compute.JobState{compute.StateCompleted},
		polls:  make(map[string]int),
	}
}

// Submitted returns the number of accepted submissions
func (b *ComputeBackend) Submitted() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitted
}

// LastInput returns the most recent submission payload
func (b *ComputeBackend) LastInput() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.inputs) == 0 {
		return nil
	}
	return b.inputs[len(b.inputs)-1]
}

// Submit accepts a job and assigns it an external ID
func (b *ComputeBackend) Submit(_ context.Context, input map[string]interface{}) (*compute.SubmitResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SubmitErr != nil {
		return nil, b.SubmitErr
	}

	b.submitted++
	b.inputs = append(b.inputs, input)
	id := fmt.Sprintf("ext-%d", b.submitted)
	return &compute.SubmitResponse{ID: id, Status: compute.StateQueued}, nil
}

// Status reports the job's next state in the configured sequence
func (b *ComputeBackend) Status(_ context.Context, externalJobID string) (*compute.StatusResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	step := b.polls[externalJobID]
	b.polls[externalJobID] = step + 1

	if step >= len(b.States) {
		step = len(b.States) - 1
	}
	state := b.States[step]

	resp := &compute.StatusResponse{ID: externalJobID, Status: state}
	if state.Terminal() {
		resp.Output = b.Output
		resp.Error = b.StatusError
	}
	return resp, nil
}

// DownloadFile returns the configured bytes for a file path
func (b *ComputeBackend) DownloadFile(_ context.Context, filePath string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.Files[filePath]
	if !ok {
		return nil, fmt.Errorf("no such file %q", filePath)
	}
	return data, nil
}
