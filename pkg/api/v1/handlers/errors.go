// Package handlers provides HTTP request handling
package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/mediaforge/mediaforge/internal/compute"
	"github.com/mediaforge/mediaforge/internal/retry"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/storage"
	"github.com/mediaforge/mediaforge/internal/types"
)

// Common error messages
const (
	ErrMsgInvalidReqBody   = "Invalid request body"
	ErrMsgJobIDRequired    = "Job id is required"
	ErrMsgJobNotFound      = "Job not found"
	ErrMsgAssetIDRequired  = "Asset id is required"
	ErrMsgAssetNotFound    = "Asset not found"
	ErrMsgTypeRequired     = "Generation type is required"
	ErrMsgFolderRequired   = "Folder path is required"
	ErrMsgFileRequired     = "A file is required"
	ErrMsgInvalidJobStatus = "Invalid job status"
)

// respondError maps a service error onto the API's outcome codes: 400 for
// validation failures, 404 for missing resources, and 500 otherwise, with a
// retryable hint for transient connectivity classes.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMissingID):
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	case services.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(err.Error()))
	case isRetryable(err):
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServerRetryable(err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(err.Error()))
	}
}

// isRetryable reports whether the whole request can be safely resubmitted
func isRetryable(err error) bool {
	var storeErr *storage.Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind == storage.KindTransient
	}
	var apiErr *compute.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRateLimited() || apiErr.IsServerError()
	}
	var partial *services.PartialDeletionError
	if errors.As(err, &partial) {
		// Partial deletions need targeted follow-up, not a blind retry.
		return false
	}
	return retry.IsTransient(err)
}
