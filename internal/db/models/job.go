package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobStatus represents the current state of a job in the system
type JobStatus string

// Job status constants. Completed and failed are terminal; a job is never
// retried once it reaches either.
const (
	// JobStatusProcessing indicates the job has been accepted and dispatched
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the job has finished successfully
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job has failed to complete
	JobStatusFailed JobStatus = "failed"
)

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	switch JobStatus(str) {
	case JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return JobStatus(str), nil
	}
	return "", fmt.Errorf("invalid job status: %s", str)
}

// Terminal reports whether the status is an end state
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job represents one dispatched unit of external compute work and its outcome
type Job struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	Type          string     `json:"type" gorm:"not null;index"`
	Status        JobStatus  `json:"status" gorm:"not null;index"`
	ExternalJobID string     `json:"external_job_id,omitempty" gorm:"index"`
	ResultURL     string     `json:"result_url,omitempty" gorm:"type:text"`
	Options       JSONMap    `json:"options,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// MarshalOptions renders the options document for logging and diagnostics
func (j *Job) MarshalOptions() string {
	if j.Options == nil {
		return "{}"
	}
	data, err := json.Marshal(j.Options)
	if err != nil {
		return "{}"
	}
	return string(data)
}
