package repos

import (
	"github.com/mediaforge/mediaforge/internal/db/models"
)

type JobRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func (s *JobRepositoryTestSuite) TestCreate() {
	job := s.createTestJob()
	s.NotEmpty(job.ID)

	// Creating without an id fails before touching the database.
	err := s.jobRepo.Create(s.ctx, &models.Job{Type: "image-generation"})
	s.Error(err)
}

func (s *JobRepositoryTestSuite) TestGetByID() {
	original := s.createTestJob()

	found, err := s.jobRepo.GetByID(s.ctx, original.ID)
	s.NoError(err)
	s.Equal(original.ID, found.ID)
	s.Equal(models.JobStatusProcessing, found.Status)
	s.Equal("a test prompt", found.Options["prompt"])

	_, err = s.jobRepo.GetByID(s.ctx, "missing-id")
	s.ErrorIs(err, ErrNotFound)
}

func (s *JobRepositoryTestSuite) TestUpdateStatus() {
	job := s.createTestJob()

	err := s.jobRepo.UpdateStatus(s.ctx, job.ID, models.JobStatusCompleted, "https://store.example.com/bucket/results/out.png")
	s.NoError(err)

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusCompleted, updated.Status)
	s.Equal("https://store.example.com/bucket/results/out.png", updated.ResultURL)
	s.NotNil(updated.CompletedAt)
}

func (s *JobRepositoryTestSuite) TestUpdateStatusFailedKeepsResultURLEmpty() {
	job := s.createTestJob()

	s.NoError(s.jobRepo.UpdateStatus(s.ctx, job.ID, models.JobStatusFailed, ""))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusFailed, updated.Status)
	s.Empty(updated.ResultURL)
	s.NotNil(updated.CompletedAt)
}

func (s *JobRepositoryTestSuite) TestSetExternalJobID() {
	job := s.createTestJob()

	s.NoError(s.jobRepo.SetExternalJobID(s.ctx, job.ID, "ext-abc123"))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal("ext-abc123", updated.ExternalJobID)
}

func (s *JobRepositoryTestSuite) TestMergeOptions() {
	job := s.createTestJob()

	s.NoError(s.jobRepo.MergeOptions(s.ctx, job.ID, models.JSONMap{"input_path": "inputs/a.png"}))
	s.NoError(s.jobRepo.MergeOptions(s.ctx, job.ID, models.JSONMap{"error": "boom"}))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)

	// Earlier keys survive later merges.
	s.Equal("a test prompt", updated.Options["prompt"])
	s.Equal("inputs/a.png", updated.Options["input_path"])
	s.Equal("boom", updated.Options["error"])
}

func (s *JobRepositoryTestSuite) TestList() {
	s.createTestJob()
	job2 := s.createTestJob()
	s.NoError(s.jobRepo.UpdateStatus(s.ctx, job2.ID, models.JobStatusFailed, ""))

	all, err := s.jobRepo.List(s.ctx, "", nil)
	s.NoError(err)
	s.Len(all, 2)

	failed, err := s.jobRepo.List(s.ctx, models.JobStatusFailed, nil)
	s.NoError(err)
	s.Len(failed, 1)
	s.Equal(job2.ID, failed[0].ID)
}
