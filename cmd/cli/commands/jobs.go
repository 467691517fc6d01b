package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediaforge/mediaforge/internal/db/models"
)

// jobOutput represents the filtered output for a job
type jobOutput struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url,omitempty"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs []jobOutput `json:"jobs"`
}

func init() {
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(jobStatusCmd)

	// Add flags
	listJobsCmd.Flags().IntP("page", "p", 1, "Page of jobs to return")
	listJobsCmd.Flags().String("status", "", "Filter jobs by status (processing, completed, failed)")

	getJobCmd.Flags().StringP("id", "i", "", "Job ID to fetch")
	_ = getJobCmd.MarkFlagRequired("id")

	jobStatusCmd.Flags().StringP("id", "i", "", "Job ID to fetch")
	_ = jobStatusCmd.MarkFlagRequired("id")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage generation jobs",
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		page, _ := cmd.Flags().GetInt("page")
		status, _ := cmd.Flags().GetString("status")

		opts := (&models.ListOptions{}).WithDefaults()
		if page > 1 {
			opts.Offset = (page - 1) * opts.Limit
		}

		jobs, err := apiClient.GetJobs(context.Background(), status, opts)
		if err != nil {
			return fmt.Errorf("error fetching jobs: %w", err)
		}

		// Filter the response to only include relevant fields
		output := jobListOutput{
			Jobs: make([]jobOutput, len(jobs)),
		}
		for i, job := range jobs {
			output.Jobs[i] = jobOutput{
				ID:        job.ID,
				Type:      job.Type,
				Status:    string(job.Status),
				ResultURL: job.ResultURL,
			}
		}

		return printJSON(cmd, output)
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")

		job, err := apiClient.GetJob(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error fetching job: %w", err)
		}

		return printJSON(cmd, job)
	},
}

var jobStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get the condensed status of a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")

		status, err := apiClient.GetJobStatus(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error fetching job status: %w", err)
		}

		return printJSON(cmd, status)
	},
}

// printJSON pretty prints v on the command's output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	cmd.Println(string(prettyJSON))
	return nil
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}
