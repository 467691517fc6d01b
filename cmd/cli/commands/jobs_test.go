package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/types"
)

// setupTestCommand installs a mock client and captures command output
func setupTestCommand(t *testing.T, cmd *cobra.Command) (*mockClient, *bytes.Buffer) {
	mock := &mockClient{}

	// Save the original client instance and restore it after the test
	originalClient := apiClient
	t.Cleanup(func() {
		apiClient = originalClient
	})
	apiClient = mock

	outputBuf := &bytes.Buffer{}
	cmd.SetOut(outputBuf)
	for _, subCmd := range cmd.Commands() {
		subCmd.SetOut(outputBuf)
	}

	return mock, outputBuf
}

func TestListJobsCommand(t *testing.T) {
	cmd := GetJobsCmd()
	mock, outputBuf := setupTestCommand(t, cmd)

	mock.GetJobsFn = func(_ context.Context, status string, opts *models.ListOptions) ([]models.Job, error) {
		assert.Equal(t, "processing", status)
		require.NotNil(t, opts)

		return []models.Job{
			{ID: "job-123", Type: "text-to-video", Status: models.JobStatusProcessing},
			{ID: "job-456", Type: "text-to-image", Status: models.JobStatusProcessing},
		}, nil
	}

	cmd.SetArgs([]string{"list", "--status", "processing"})
	err := cmd.Execute()
	require.NoError(t, err, "Command execution failed")

	require.Equal(t, 1, mock.GetJobsCalls, "GetJobs should be called once")

	output := outputBuf.String()
	assert.Contains(t, output, `"id": "job-123"`)
	assert.Contains(t, output, `"status": "processing"`)
	assert.Contains(t, output, `"id": "job-456"`)
}

func TestGetJobCommand(t *testing.T) {
	cmd := GetJobsCmd()
	mock, outputBuf := setupTestCommand(t, cmd)

	mock.GetJobFn = func(_ context.Context, id string) (models.Job, error) {
		assert.Equal(t, "job-123", id)

		return models.Job{
			ID:        "job-123",
			Type:      "text-to-video",
			Status:    models.JobStatusCompleted,
			ResultURL: "https://store.example.com/bucket/results/job-123/result.mp4",
		}, nil
	}

	cmd.SetArgs([]string{"get", "-i", "job-123"})
	err := cmd.Execute()
	require.NoError(t, err, "Command execution failed")

	require.Equal(t, 1, mock.GetJobCalls, "GetJob should be called once")

	output := outputBuf.String()
	assert.Contains(t, output, "job-123")
	assert.Contains(t, output, "completed")
}

func TestJobStatusCommand(t *testing.T) {
	cmd := GetJobsCmd()
	mock, outputBuf := setupTestCommand(t, cmd)

	mock.GetJobStatusFn = func(_ context.Context, id string) (types.JobResponse, error) {
		assert.Equal(t, "job-123", id)
		return types.JobResponse{JobID: "job-123", Status: "processing"}, nil
	}

	cmd.SetArgs([]string{"status", "-i", "job-123"})
	err := cmd.Execute()
	require.NoError(t, err, "Command execution failed")

	output := outputBuf.String()
	assert.Contains(t, output, "job-123")
	assert.Contains(t, output, "processing")
}
