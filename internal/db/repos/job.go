package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mediaforge/mediaforge/internal/db/models"
)

// JobRepository provides access to job-related database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where(&models.Job{ID: id}).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// Update saves the full job row
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// UpdateStatus updates the status of a job, and the result URL and completion
// time when the job reached a terminal state
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus, resultURL string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if resultURL != "" {
		updates["result_url"] = resultURL
	}
	if status.Terminal() {
		now := time.Now().UTC()
		updates["completed_at"] = &now
	}

	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where(&models.Job{ID: id}).
		Updates(updates).Error
}

// SetExternalJobID records the identifier returned by the compute backend
func (r *JobRepository) SetExternalJobID(ctx context.Context, id, externalJobID string) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where(&models.Job{ID: id}).
		Update("external_job_id", externalJobID).Error
}

// MergeOptions overlays patch onto the job's persisted options document.
// The document is read, merged, and written back; it is never replaced
// wholesale, since the submission and finalize steps both write to it.
func (r *JobRepository) MergeOptions(ctx context.Context, id string, patch models.JSONMap) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	merged := job.Options.Merge(patch)
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where(&models.Job{ID: id}).
		Update("options", merged).Error
}

// List returns jobs, newest first, optionally filtered by status
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error) {
	opts = opts.WithDefaults()

	qry := r.db.WithContext(ctx).Model(&models.Job{})
	if status != "" {
		qry = qry.Where(&models.Job{Status: status})
	}

	var jobs []models.Job
	err := qry.Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}
