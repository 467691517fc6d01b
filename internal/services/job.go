package services

import (
	"context"
	"fmt"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/types"
)

// Job provides read access and status updates for job records
type Job struct {
	jobs JobStore
}

// NewJobService creates a new job service instance
func NewJobService(jobs JobStore) *Job {
	return &Job{jobs: jobs}
}

// GetJob retrieves a job by its ID
func (s *Job) GetJob(ctx context.Context, id string) (*models.Job, error) {
	if id == "" {
		return nil, fmt.Errorf("job: %w", ErrMissingID)
	}
	return s.jobs.GetByID(ctx, id)
}

// GetJobStatus retrieves the condensed status of a job. Failed jobs carry
// the recorded failure message.
func (s *Job) GetJobStatus(ctx context.Context, id string) (*types.JobResponse, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &types.JobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	}
	if job.Status == models.JobStatusFailed {
		if msg, ok := job.Options["error"].(string); ok {
			resp.Error = msg
		}
	}
	return resp, nil
}

// ListJobs retrieves a paginated list of jobs, optionally filtered by status
func (s *Job) ListJobs(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error) {
	return s.jobs.List(ctx, status, opts)
}
