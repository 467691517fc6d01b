// Package compute provides the client for the external GPU compute backend.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mediaforge/mediaforge/config"
	"github.com/mediaforge/mediaforge/internal/logger"
	"github.com/mediaforge/mediaforge/internal/retry"
)

// APIError represents a compute backend API error
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface for APIError
func (e *APIError) Error() string {
	return fmt.Sprintf("compute API error: %s (status: %d)", e.Message, e.Status)
}

// IsNotFound returns true if the error is a not found error
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsAuthFailure returns true if the credentials were rejected
func (e *APIError) IsAuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsRateLimited returns true if the error is a rate limit error
func (e *APIError) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// IsServerError returns true if the error is a server error
func (e *APIError) IsServerError() bool {
	return e.Status >= http.StatusInternalServerError
}

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	retryBaseDelay = 2 * time.Second
)

// Client represents a compute backend API client. One client is constructed
// per credentials set and shared by the components that need it.
type Client struct {
	httpClient *http.Client
	config     *config.ComputeConfig
	baseURL    string
	exec       *retry.Executor
}

// NewClient creates a new compute backend client
func NewClient(cfg *config.ComputeConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	baseURL := cfg.BaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		config:  cfg,
		baseURL: baseURL,
		exec:    retry.New(maxRetries, retryBaseDelay).WithClassifier(retryableAPIError),
	}, nil
}

// WithSleep replaces the retry sleep function. Used by tests.
func (c *Client) WithSleep(sleep func(time.Duration)) *Client {
	clone := *c
	clone.exec = c.exec.WithSleep(sleep)
	return &clone
}

// Submit dispatches a unit of work and returns the backend's job identifier
func (c *Client) Submit(ctx context.Context, input map[string]interface{}) (*SubmitResponse, error) {
	path := fmt.Sprintf("/v2/%s/run", c.config.EndpointID)

	body, err := c.doRequest(ctx, http.MethodPost, path, &SubmitRequest{Input: input})
	if err != nil {
		return nil, err
	}

	var resp SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling submit response: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("backend returned no job id")
	}
	return &resp, nil
}

// Status polls the backend for the state of a previously submitted job
func (c *Client) Status(ctx context.Context, externalJobID string) (*StatusResponse, error) {
	path := fmt.Sprintf("/v2/%s/status/%s", c.config.EndpointID, url.PathEscape(externalJobID))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling status response: %w", err)
	}
	return &resp, nil
}

// DownloadFile fetches a file the backend reports only by its internal path
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	path := fmt.Sprintf("/v2/%s/files/%s", c.config.EndpointID, url.PathEscape(filePath))
	return c.doRequest(ctx, http.MethodGet, path, nil)
}

// doRequest performs an HTTP request with retries. Transient backend errors
// (429, 502, 503, 504, connectivity) are retried; authentication failures and
// client errors surface immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var bodyData []byte
	var err error

	if body != nil {
		bodyData, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	requestURL := c.baseURL + path
	var respBody []byte

	err = c.exec.Do(ctx, fmt.Sprintf("compute %s %s", method, path), func() error {
		var reqBody io.Reader
		if bodyData != nil {
			reqBody = bytes.NewReader(bodyData)
		}

		req, reqErr := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
		if reqErr != nil {
			return fmt.Errorf("failed to create request: %w", reqErr)
		}

		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return doErr
		}
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				logger.Warnf("error closing response body: %v", cerr)
			}
		}()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("error reading response body: %w", readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{Message: apiMessage(data, resp.Status), Status: resp.StatusCode}
		}

		respBody = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	return respBody, nil
}

// retryableAPIError classifies backend failures for the retry executor
func retryableAPIError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return retry.IsTransient(err)
}

func apiMessage(body []byte, fallback string) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return fallback
}
