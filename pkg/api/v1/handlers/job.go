package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/types"
)

// JobHandler handles HTTP requests for job operations
type JobHandler struct {
	jobService *services.Job
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(s *services.Job) *JobHandler {
	return &JobHandler{jobService: s}
}

// GetJob handles the request to get a job
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgJobIDRequired))
	}

	job, err := h.jobService.GetJob(c.Context(), jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(job))
}

// GetJobStatus handles the request to get a job's status
func (h *JobHandler) GetJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgJobIDRequired))
	}

	status, err := h.jobService.GetJobStatus(c.Context(), jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(status))
}

// ListJobs handles the request to list jobs
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	var status models.JobStatus

	if statusStr := c.Query("status"); statusStr != "" {
		parsed, err := models.ParseJobStatus(statusStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(types.ErrInvalidInput(ErrMsgInvalidJobStatus))
		}
		status = parsed
	}

	page := c.QueryInt("page", 1)
	jobs, err := h.jobService.ListJobs(c.Context(), status, getPaginationOptions(page))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(types.Success(jobs))
}
