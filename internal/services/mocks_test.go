package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/mediaforge/mediaforge/internal/compute"
	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/db/repos"
	"github.com/mediaforge/mediaforge/internal/storage"
)

type uploadCall struct {
	data        []byte
	fileName    string
	contentType string
	destPath    string
}

type mockObjectStore struct {
	mu          sync.Mutex
	uploads     []uploadCall
	deleteKeys  []string
	uploadErr   error
	deleteErr   error
	downloadErr error
	downloaded  []byte
}

func (m *mockObjectStore) List(context.Context, string) ([]storage.Object, error) {
	return nil, nil
}

func (m *mockObjectStore) Upload(_ context.Context, data []byte, fileName, contentType, destPath string) (*storage.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, uploadCall{data: data, fileName: fileName, contentType: contentType, destPath: destPath})
	key := destPath + "/" + fileName
	return &storage.UploadResult{
		ExternalURL:       "https://store.example.com/bucket/" + key,
		StoreRelativePath: key,
	}, nil
}

func (m *mockObjectStore) Download(context.Context, string) ([]byte, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return m.downloaded, nil
}

func (m *mockObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleteKeys = append(m.deleteKeys, key)
	return nil
}

func (m *mockObjectStore) CreateFolder(context.Context, string) error {
	return nil
}

func (m *mockObjectStore) deleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleteKeys)
}

type mockJobStore struct {
	mu        sync.Mutex
	jobs      map[string]*models.Job
	createErr error
}

func newMockJobStore() *mockJobStore {
	return &mockJobStore{jobs: make(map[string]*models.Job)}
}

func (m *mockJobStore) Create(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockJobStore) GetByID(_ context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, repos.ErrNotFound)
	}
	clone := *job
	return &clone, nil
}

func (m *mockJobStore) UpdateStatus(_ context.Context, id string, status models.JobStatus, resultURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return repos.ErrNotFound
	}
	job.Status = status
	if resultURL != "" {
		job.ResultURL = resultURL
	}
	return nil
}

func (m *mockJobStore) SetExternalJobID(_ context.Context, id, externalJobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return repos.ErrNotFound
	}
	job.ExternalJobID = externalJobID
	return nil
}

func (m *mockJobStore) MergeOptions(_ context.Context, id string, patch models.JSONMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return repos.ErrNotFound
	}
	job.Options = job.Options.Merge(patch)
	return nil
}

func (m *mockJobStore) List(_ context.Context, status models.JobStatus, _ *models.ListOptions) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, job := range m.jobs {
		if status == "" || job.Status == status {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *mockJobStore) get(id string) *models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

func (m *mockJobStore) single() *models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		return job
	}
	return nil
}

type mockAssetStore struct {
	mu        sync.Mutex
	assets    map[string]*models.Asset
	deleteErr error
	deletes   int
}

func newMockAssetStore(assets ...*models.Asset) *mockAssetStore {
	m := &mockAssetStore{assets: make(map[string]*models.Asset)}
	for _, a := range assets {
		m.assets[a.ID] = a
	}
	return m
}

func (m *mockAssetStore) Create(_ context.Context, asset *models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[asset.ID] = asset
	return nil
}

func (m *mockAssetStore) GetByID(_ context.Context, id string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, repos.ErrNotFound)
	}
	return asset, nil
}

func (m *mockAssetStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.assets, id)
	return nil
}

func (m *mockAssetStore) List(context.Context, *models.ListOptions) ([]models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Asset
	for _, a := range m.assets {
		out = append(out, *a)
	}
	return out, nil
}

type mockBackend struct {
	mu          sync.Mutex
	submitResp  *compute.SubmitResponse
	submitErr   error
	statusResps []*compute.StatusResponse
	statusErr   error
	statusCalls int
	fileData    []byte
	fileErr     error
	filePaths   []string
}

func (m *mockBackend) Submit(context.Context, map[string]interface{}) (*compute.SubmitResponse, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.submitResp != nil {
		return m.submitResp, nil
	}
	return &compute.SubmitResponse{ID: "ext-1", Status: compute.StateQueued}, nil
}

func (m *mockBackend) Status(context.Context, string) (*compute.StatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	idx := m.statusCalls
	m.statusCalls++
	if idx >= len(m.statusResps) {
		idx = len(m.statusResps) - 1
	}
	return m.statusResps[idx], nil
}

func (m *mockBackend) DownloadFile(_ context.Context, filePath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fileErr != nil {
		return nil, m.fileErr
	}
	m.filePaths = append(m.filePaths, filePath)
	return m.fileData, nil
}
