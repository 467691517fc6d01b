package handlers

import "github.com/mediaforge/mediaforge/internal/db/models"

// getPaginationOptions returns a ListOptions struct with validated pagination parameters
func getPaginationOptions(page int) *models.ListOptions {
	if page < 1 {
		page = 1
	}

	return &models.ListOptions{
		Limit:  models.DefaultLimit,
		Offset: (page - 1) * models.DefaultLimit,
	}
}
