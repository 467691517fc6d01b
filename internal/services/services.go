// Package services contains the business logic for job orchestration and
// asset management.
package services

import (
	"context"
	"errors"

	"github.com/mediaforge/mediaforge/internal/compute"
	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/storage"
)

// ObjectStore is the object store surface the services depend on
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	Upload(ctx context.Context, data []byte, fileName, contentType, destPath string) (*storage.UploadResult, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	CreateFolder(ctx context.Context, folderPath string) error
}

// ComputeBackend is the compute backend surface the services depend on
type ComputeBackend interface {
	Submit(ctx context.Context, input map[string]interface{}) (*compute.SubmitResponse, error)
	Status(ctx context.Context, externalJobID string) (*compute.StatusResponse, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// JobStore is the relational persistence surface for jobs
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	UpdateStatus(ctx context.Context, id string, status models.JobStatus, resultURL string) error
	SetExternalJobID(ctx context.Context, id, externalJobID string) error
	MergeOptions(ctx context.Context, id string, patch models.JSONMap) error
	List(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error)
}

// AssetStore is the relational persistence surface for assets
type AssetStore interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error)
}

// ErrMissingID is returned when a required identifier is absent
var ErrMissingID = errors.New("id is required")
