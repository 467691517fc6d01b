package compute

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaforge/mediaforge/config"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(&config.ComputeConfig{
		APIKey:     "test-key",
		EndpointID: "ep-123",
		BaseURL:    baseURL,
	})
	require.NoError(t, err)
	return client.WithSleep(func(time.Duration) {})
}

func TestNewClientRequiresSettings(t *testing.T) {
	_, err := NewClient(&config.ComputeConfig{EndpointID: "ep-123"})
	require.Error(t, err)

	_, err = NewClient(&config.ComputeConfig{APIKey: "k"})
	require.Error(t, err)
}

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/ep-123/run", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "inputs/face.png", req.Input["image_path"])

		_ = json.NewEncoder(w).Encode(SubmitResponse{ID: "ext-1", Status: StateQueued})
	}))
	defer server.Close()

	resp, err := testClient(t, server.URL).Submit(context.Background(), map[string]interface{}{
		"image_path": "inputs/face.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "ext-1", resp.ID)
	assert.Equal(t, StateQueued, resp.Status)
}

func TestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/ep-123/status/ext-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(StatusResponse{
			ID:     "ext-1",
			Status: StateCompleted,
			Output: map[string]interface{}{"video_url": "https://cdn.example.com/out.mp4"},
		})
	}))
	defer server.Close()

	resp, err := testClient(t, server.URL).Status(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, resp.Status)
	assert.Equal(t, "https://cdn.example.com/out.mp4", resp.Output["video_url"])
}

func TestRetriesOnServiceUnavailable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(SubmitResponse{ID: "ext-2", Status: StateQueued})
	}))
	defer server.Close()

	resp, err := testClient(t, server.URL).Submit(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "ext-2", resp.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryAuthFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).Status(context.Background(), "ext-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuthFailure())
	assert.Contains(t, apiErr.Message, "invalid api key")
}

func TestJobStateTerminal(t *testing.T) {
	assert.False(t, StateQueued.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.True(t, StateTimedOut.Terminal())
}
