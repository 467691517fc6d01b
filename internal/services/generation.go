package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediaforge/mediaforge/internal/compute"
	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/events"
	"github.com/mediaforge/mediaforge/internal/logger"
	"github.com/mediaforge/mediaforge/internal/types"
)

// Generation configuration defaults
const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = time.Hour
	DefaultWorkers      = 4

	inputsPrefix  = "inputs"
	resultsPrefix = "results"
)

// GenerationConfig tunes the lifecycle service
type GenerationConfig struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
	Workers      int
	QueueSize    int
}

func (c GenerationConfig) withDefaults() GenerationConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// Generation drives a job from submission to a terminal state. Submission is
// synchronous through obtaining the backend job id; polling and finalization
// run on the worker pool and are never awaited by the caller.
type Generation struct {
	jobs    JobStore
	store   ObjectStore
	backend ComputeBackend
	pool    *WorkerPool
	cfg     GenerationConfig
}

// NewGenerationService creates the lifecycle service and its worker pool
func NewGenerationService(jobs JobStore, store ObjectStore, backend ComputeBackend, cfg GenerationConfig) *Generation {
	s := &Generation{
		jobs:    jobs,
		store:   store,
		backend: backend,
		cfg:     cfg.withDefaults(),
	}
	s.pool = NewWorkerPool(s.cfg.Workers, s.cfg.QueueSize, s.finalize)
	return s
}

// Start launches the background workers
func (s *Generation) Start(ctx context.Context) {
	s.pool.Start(ctx)
}

// Wait blocks until the workers have exited
func (s *Generation) Wait() {
	s.pool.Wait()
}

// Submit accepts a generation request. The job row is created first, inputs
// are staged into the object store, and the work is dispatched to the
// backend. A submission failure is never left in processing: the job is
// transitioned to failed before the error is returned.
func (s *Generation) Submit(ctx context.Context, req *types.GenerateRequest) (*types.JobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:     uuid.NewString(),
		Type:   req.Type,
		Status: models.JobStatusProcessing,
		Options: models.JSONMap{
			"parameters": truncateValue(req.Parameters),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	inputPaths, err := s.stageInputs(ctx, job.ID, req.Inputs)
	if err != nil {
		s.markFailed(ctx, job.ID, err)
		return &types.JobResponse{JobID: job.ID, Status: string(models.JobStatusFailed), Error: err.Error()},
			fmt.Errorf("failed to stage inputs: %w", err)
	}

	payload := make(map[string]interface{}, len(req.Parameters)+2)
	for k, v := range req.Parameters {
		payload[k] = v
	}
	payload["type"] = req.Type
	if len(inputPaths) > 0 {
		payload["input_paths"] = inputPaths
		if mergeErr := s.jobs.MergeOptions(ctx, job.ID, models.JSONMap{"input_paths": inputPaths}); mergeErr != nil {
			logger.Errorf("failed to record input paths for job %s: %v", job.ID, mergeErr)
		}
	}

	submitted, err := s.backend.Submit(ctx, payload)
	if err != nil {
		s.markFailed(ctx, job.ID, err)
		return &types.JobResponse{JobID: job.ID, Status: string(models.JobStatusFailed), Error: err.Error()},
			fmt.Errorf("backend submission failed: %w", err)
	}

	if err := s.jobs.SetExternalJobID(ctx, job.ID, submitted.ID); err != nil {
		s.markFailed(ctx, job.ID, err)
		return &types.JobResponse{JobID: job.ID, Status: string(models.JobStatusFailed), Error: err.Error()},
			fmt.Errorf("failed to record external job id: %w", err)
	}

	s.pool.Enqueue(FinalizeTask{JobID: job.ID, ExternalJobID: submitted.ID})
	events.Publish(events.Event{Type: events.EventJobSubmitted, JobID: job.ID, JobType: req.Type})

	logger.InfoWithFields("job submitted", map[string]interface{}{
		"job_id":          job.ID,
		"external_job_id": submitted.ID,
		"type":            req.Type,
	})

	return &types.JobResponse{JobID: job.ID, Status: string(models.JobStatusProcessing)}, nil
}

func (s *Generation) stageInputs(ctx context.Context, jobID string, inputs []types.InputFile) ([]string, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	paths := make([]string, 0, len(inputs))
	destPath := fmt.Sprintf("%s/%s", inputsPrefix, jobID)
	for _, in := range inputs {
		uploaded, err := s.store.Upload(ctx, in.Data, in.Name, in.ContentType, destPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stage input %q: %w", in.Name, err)
		}
		paths = append(paths, uploaded.StoreRelativePath)
	}
	return paths, nil
}

// finalize polls the backend until the job is terminal and persists the
// outcome. Every error path transitions the job to failed; nothing escapes
// to the worker unhandled.
func (s *Generation) finalize(ctx context.Context, task FinalizeTask) {
	deadline := time.Now().Add(s.cfg.PollTimeout)

	for {
		st, err := s.backend.Status(ctx, task.ExternalJobID)
		if err != nil {
			s.markFailed(ctx, task.JobID, fmt.Errorf("polling failed: %w", err))
			return
		}

		if st.Status.Terminal() {
			s.settle(ctx, task, st)
			return
		}

		if time.Now().After(deadline) {
			s.markFailed(ctx, task.JobID, fmt.Errorf("polling timed out after %s", s.cfg.PollTimeout))
			return
		}

		select {
		case <-ctx.Done():
			s.markFailed(ctx, task.JobID, fmt.Errorf("finalize interrupted: %w", ctx.Err()))
			return
		case <-time.After(s.cfg.PollInterval):
		}
	}
}

func (s *Generation) settle(ctx context.Context, task FinalizeTask, st *compute.StatusResponse) {
	if st.Status != compute.StateCompleted {
		cause := st.Error
		if cause == "" {
			cause = fmt.Sprintf("backend reported %s", st.Status)
		}
		s.markFailed(ctx, task.JobID, fmt.Errorf("%s", cause))
		return
	}

	if st.Output != nil {
		if err := s.jobs.MergeOptions(ctx, task.JobID, models.JSONMap{
			"output": truncateValue(st.Output),
		}); err != nil {
			logger.Errorf("failed to record output for job %s: %v", task.JobID, err)
		}
	}

	resultURL, err := s.extractResult(ctx, task.JobID, st.Output)
	if err != nil {
		s.markFailed(ctx, task.JobID, fmt.Errorf("result extraction failed: %w", err))
		return
	}

	if err := s.jobs.UpdateStatus(ctx, task.JobID, models.JobStatusCompleted, resultURL); err != nil {
		logger.Errorf("failed to mark job %s completed: %v", task.JobID, err)
		return
	}

	events.Publish(events.Event{Type: events.EventJobCompleted, JobID: task.JobID, ResultURL: resultURL})

	logger.InfoWithFields("job completed", map[string]interface{}{
		"job_id":     task.JobID,
		"result_url": resultURL,
	})
}

// Result field names, checked in priority order. Base64 payloads come before
// URL fields so backends that echo both a placeholder URL and the real
// inline payload are not short-circuited onto the placeholder.
var (
	base64Fields = []resultField{
		{"video_base64", "result.mp4", "video/mp4"},
		{"image_base64", "result.png", "image/png"},
		{"audio_base64", "result.wav", "audio/wav"},
		{"result_base64", "result.bin", "application/octet-stream"},
	}
	directURLFields  = []string{"video_url", "image_url", "audio_url"}
	genericURLFields = []string{"output_url", "url"}
)

type resultField struct {
	key         string
	fileName    string
	contentType string
}

func (s *Generation) extractResult(ctx context.Context, jobID string, output map[string]interface{}) (string, error) {
	destPath := fmt.Sprintf("%s/%s", resultsPrefix, jobID)

	for _, f := range base64Fields {
		encoded, ok := stringField(output, f.key)
		if !ok {
			continue
		}
		data, err := decodeBase64(encoded)
		if err != nil {
			return "", fmt.Errorf("invalid %s payload: %w", f.key, err)
		}
		uploaded, err := s.store.Upload(ctx, data, f.fileName, f.contentType, destPath)
		if err != nil {
			return "", fmt.Errorf("failed to persist %s artifact: %w", f.key, err)
		}
		return uploaded.ExternalURL, nil
	}

	for _, key := range directURLFields {
		if u, ok := stringField(output, key); ok {
			return u, nil
		}
	}
	for _, key := range genericURLFields {
		if u, ok := stringField(output, key); ok {
			return u, nil
		}
	}

	if filePath, ok := stringField(output, "file_path"); ok {
		data, err := s.backend.DownloadFile(ctx, filePath)
		if err != nil {
			return "", fmt.Errorf("failed to fetch backend file %q: %w", filePath, err)
		}
		fileName := filePath
		if idx := strings.LastIndex(fileName, "/"); idx >= 0 {
			fileName = fileName[idx+1:]
		}
		uploaded, err := s.store.Upload(ctx, data, fileName, "application/octet-stream", destPath)
		if err != nil {
			return "", fmt.Errorf("failed to persist backend file: %w", err)
		}
		return uploaded.ExternalURL, nil
	}

	// Nothing recognizable in the payload. The job still completed, so fall
	// back to a deterministic placeholder and flag the output for review.
	if err := s.jobs.MergeOptions(ctx, jobID, models.JSONMap{"output_unidentified": true}); err != nil {
		logger.Errorf("failed to flag unidentified output for job %s: %v", jobID, err)
	}
	return fmt.Sprintf("mediaforge://jobs/%s/unidentified-output", jobID), nil
}

func (s *Generation) markFailed(ctx context.Context, jobID string, cause error) {
	logger.ErrorWithFields("job failed", map[string]interface{}{
		"job_id": jobID,
		"error":  cause.Error(),
	})

	if err := s.jobs.MergeOptions(ctx, jobID, models.JSONMap{
		"error":     truncateString(cause.Error()),
		"failed_at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		logger.Errorf("failed to record error for job %s: %v", jobID, err)
	}
	if err := s.jobs.UpdateStatus(ctx, jobID, models.JobStatusFailed, ""); err != nil {
		logger.Errorf("failed to mark job %s failed: %v", jobID, err)
	}

	events.Publish(events.Event{Type: events.EventJobFailed, JobID: jobID, Error: cause.Error()})
}

func stringField(output map[string]interface{}, key string) (string, bool) {
	if output == nil {
		return "", false
	}
	s, ok := output[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func decodeBase64(encoded string) ([]byte, error) {
	// Tolerate data-URI style payloads.
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
}
