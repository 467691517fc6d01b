// Package client provides the API client for interacting with the MediaForge API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/storage"
	"github.com/mediaforge/mediaforge/internal/types"
	"github.com/mediaforge/mediaforge/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Asset Endpoints
	GetAssets(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error)
	BrowseAssets(ctx context.Context, prefix string) ([]storage.Object, error)
	GetAsset(ctx context.Context, id string) (models.Asset, error)
	CreateFolder(ctx context.Context, path string) error
	DeleteAsset(ctx context.Context, id string) (services.DeleteResult, error)

	// Generation Endpoints
	Generate(ctx context.Context, req *types.GenerateRequest) (types.JobResponse, error)

	// Job Endpoints
	GetJobs(ctx context.Context, status string, opts *models.ListOptions) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (models.Job, error)
	GetJobStatus(ctx context.Context, id string) (types.JobResponse, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate the base URL
	_, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and decodes the slug envelope. The Data
// field of a successful response is unmarshaled into v when both are present.
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	var envelope types.SlugResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			if statusCode < 200 || statusCode >= 300 {
				return &fiber.Error{Code: statusCode, Message: string(body)}
			}
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	if statusCode < 200 || statusCode >= 300 {
		message := envelope.Error
		if message == "" {
			message = string(body)
		}
		return &fiber.Error{Code: statusCode, Message: message}
	}

	if v != nil && envelope.Data != nil {
		dataJSON, err := json.Marshal(envelope.Data)
		if err != nil {
			return fmt.Errorf("error marshaling data: %w", err)
		}
		if err := json.Unmarshal(dataJSON, v); err != nil {
			return fmt.Errorf("error decoding data: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// getQueryParams creates url.Values from ListOptions
func getQueryParams(opts *models.ListOptions) url.Values {
	q := url.Values{}
	if opts == nil {
		return q
	}

	if opts.Limit > 0 {
		page := opts.Offset/opts.Limit + 1
		q.Set("page", fmt.Sprintf("%d", page))
	}

	return q
}

// Health check implementation

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	endpoint := routes.HealthCheckURL()
	agent, err := c.createAgent(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return map[string]string{}, err
	}

	// The health endpoint does not use the slug envelope.
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return map[string]string{}, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return map[string]string{}, &fiber.Error{Code: statusCode, Message: string(body)}
	}

	var response map[string]string
	if err := json.Unmarshal(body, &response); err != nil {
		return map[string]string{}, fmt.Errorf("error decoding response: %w", err)
	}
	return response, nil
}

// Asset methods implementation

// GetAssets lists asset records
func (c *APIClient) GetAssets(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error) {
	endpoint := routes.GetAssetsURL(getQueryParams(opts))
	var response []models.Asset
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.Asset{}, err
	}
	return response, nil
}

// BrowseAssets lists the object store contents under a prefix
func (c *APIClient) BrowseAssets(ctx context.Context, prefix string) ([]storage.Object, error) {
	q := url.Values{}
	if prefix != "" {
		q.Set("prefix", prefix)
	}

	endpoint := routes.BrowseAssetsURL(q)
	var response []storage.Object
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []storage.Object{}, err
	}
	return response, nil
}

// GetAsset retrieves an asset record by ID
func (c *APIClient) GetAsset(ctx context.Context, id string) (models.Asset, error) {
	endpoint := routes.GetAssetURL(id)
	var response models.Asset
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return models.Asset{}, err
	}
	return response, nil
}

// CreateFolder creates an empty folder marker in the object store
func (c *APIClient) CreateFolder(ctx context.Context, path string) error {
	endpoint := routes.CreateFolderURL()
	body := map[string]string{"path": path}
	return c.executeRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// DeleteAsset deletes an asset from both the object store and the database
func (c *APIClient) DeleteAsset(ctx context.Context, id string) (services.DeleteResult, error) {
	endpoint := routes.DeleteAssetURL(id)
	var response services.DeleteResult
	if err := c.executeRequest(ctx, http.MethodDelete, endpoint, nil, &response); err != nil {
		return services.DeleteResult{}, err
	}
	return response, nil
}

// Generation methods implementation

// Generate submits a generation job
func (c *APIClient) Generate(ctx context.Context, req *types.GenerateRequest) (types.JobResponse, error) {
	endpoint := routes.GenerateURL()
	var response types.JobResponse
	if err := c.executeRequest(ctx, http.MethodPost, endpoint, req, &response); err != nil {
		return types.JobResponse{}, err
	}
	return response, nil
}

// Job methods implementation

// GetJobs lists jobs with optional status filtering
func (c *APIClient) GetJobs(ctx context.Context, status string, opts *models.ListOptions) ([]models.Job, error) {
	q := getQueryParams(opts)
	if status != "" {
		q.Set("status", status)
	}

	endpoint := routes.GetJobsURL(q)
	var response []models.Job
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.Job{}, err
	}
	return response, nil
}

// GetJob retrieves a job by ID
func (c *APIClient) GetJob(ctx context.Context, id string) (models.Job, error) {
	endpoint := routes.GetJobURL(id)
	var response models.Job
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return models.Job{}, err
	}
	return response, nil
}

// GetJobStatus retrieves the condensed status of a job by ID
func (c *APIClient) GetJobStatus(ctx context.Context, id string) (types.JobResponse, error) {
	endpoint := routes.GetJobStatusURL(id)
	var response types.JobResponse
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return types.JobResponse{}, err
	}
	return response, nil
}
