package commands

import (
	"context"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/storage"
	"github.com/mediaforge/mediaforge/internal/types"
	"github.com/mediaforge/mediaforge/pkg/api/v1/client"
)

// mockClient is a configurable test double for the API client
type mockClient struct {
	HealthCheckFn  func(ctx context.Context) (map[string]string, error)
	GetAssetsFn    func(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error)
	BrowseAssetsFn func(ctx context.Context, prefix string) ([]storage.Object, error)
	GetAssetFn     func(ctx context.Context, id string) (models.Asset, error)
	CreateFolderFn func(ctx context.Context, path string) error
	DeleteAssetFn  func(ctx context.Context, id string) (services.DeleteResult, error)
	GenerateFn     func(ctx context.Context, req *types.GenerateRequest) (types.JobResponse, error)
	GetJobsFn      func(ctx context.Context, status string, opts *models.ListOptions) ([]models.Job, error)
	GetJobFn       func(ctx context.Context, id string) (models.Job, error)
	GetJobStatusFn func(ctx context.Context, id string) (types.JobResponse, error)

	GetJobsCalls     int
	GetJobCalls      int
	GetAssetsCalls   int
	DeleteAssetCalls int
}

var _ client.Client = &mockClient{}

func (m *mockClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return map[string]string{"status": "healthy"}, nil
}

func (m *mockClient) GetAssets(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error) {
	m.GetAssetsCalls++
	if m.GetAssetsFn != nil {
		return m.GetAssetsFn(ctx, opts)
	}
	return nil, nil
}

func (m *mockClient) BrowseAssets(ctx context.Context, prefix string) ([]storage.Object, error) {
	if m.BrowseAssetsFn != nil {
		return m.BrowseAssetsFn(ctx, prefix)
	}
	return nil, nil
}

func (m *mockClient) GetAsset(ctx context.Context, id string) (models.Asset, error) {
	if m.GetAssetFn != nil {
		return m.GetAssetFn(ctx, id)
	}
	return models.Asset{}, nil
}

func (m *mockClient) CreateFolder(ctx context.Context, path string) error {
	if m.CreateFolderFn != nil {
		return m.CreateFolderFn(ctx, path)
	}
	return nil
}

func (m *mockClient) DeleteAsset(ctx context.Context, id string) (services.DeleteResult, error) {
	m.DeleteAssetCalls++
	if m.DeleteAssetFn != nil {
		return m.DeleteAssetFn(ctx, id)
	}
	return services.DeleteResult{ID: id}, nil
}

func (m *mockClient) Generate(ctx context.Context, req *types.GenerateRequest) (types.JobResponse, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return types.JobResponse{}, nil
}

func (m *mockClient) GetJobs(ctx context.Context, status string, opts *models.ListOptions) ([]models.Job, error) {
	m.GetJobsCalls++
	if m.GetJobsFn != nil {
		return m.GetJobsFn(ctx, status, opts)
	}
	return nil, nil
}

func (m *mockClient) GetJob(ctx context.Context, id string) (models.Job, error) {
	m.GetJobCalls++
	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}
	return models.Job{}, nil
}

func (m *mockClient) GetJobStatus(ctx context.Context, id string) (types.JobResponse, error) {
	if m.GetJobStatusFn != nil {
		return m.GetJobStatusFn(ctx, id)
	}
	return types.JobResponse{}, nil
}
