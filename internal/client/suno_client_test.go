package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneforge/api/internal/config"
	"github.com/tuneforge/api/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SunoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSunoClient(&config.SunoConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
}

func TestSubmitGeneration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/music/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req GenerateMusicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "an upbeat track", req.Prompt)

		json.NewEncoder(w).Encode(GenerateMusicResponse{TaskID: "task-42"})
	})

	resp, err := client.SubmitGeneration(context.Background(), &GenerateMusicRequest{
		Prompt: "an upbeat track",
		MV:     "chirp-v4",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-42", resp.TaskID)
}

func TestSubmitGenerationEmptyTaskID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateMusicResponse{})
	})

	_, err := client.SubmitGeneration(context.Background(), &GenerateMusicRequest{Prompt: "x"})
	assert.Error(t, err)
}

func TestGetTaskPartition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/music/task/task-42", r.URL.Path)
		json.NewEncoder(w).Encode(TaskStatusResponse{
			Data: []Clip{
				{ClipID: "clip-a", State: model.ClipStateSucceeded},
				{ClipID: "clip-b", State: model.ClipStateFailed},
				{ClipID: "clip-c", State: model.ClipStateRunning},
				{ClipID: "clip-d", State: model.ClipStatePending},
			},
		})
	})

	resp, err := client.GetTask(context.Background(), "task-42")
	require.NoError(t, err)

	succeeded, failed, inProgress := resp.Partition()
	require.Len(t, succeeded, 1)
	assert.Equal(t, "clip-a", succeeded[0].ClipID)
	require.Len(t, failed, 1)
	assert.Equal(t, "clip-b", failed[0].ClipID)
	assert.Len(t, inProgress, 2)
}

func TestGetTaskUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"overloaded"}`))
	})

	_, err := client.GetTask(context.Background(), "task-42")
	assert.Error(t, err)
}
