package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/tuneforge/api/internal/config"
	"github.com/tuneforge/api/internal/model"
)

// MusicGenerator defines the interface to the external generation provider
type MusicGenerator interface {
	SubmitGeneration(ctx context.Context, req *GenerateMusicRequest) (*GenerateMusicResponse, error)
	GetTask(ctx context.Context, taskID string) (*TaskStatusResponse, error)
}

// SunoClient implements MusicGenerator for a Suno-compatible API
type SunoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// GenerateMusicRequest represents the request for music generation
type GenerateMusicRequest struct {
	Prompt           string `json:"prompt"`
	Title            string `json:"title,omitempty"`
	Tags             string `json:"tags,omitempty"`
	MV               string `json:"mv,omitempty"`
	MakeInstrumental bool   `json:"make_instrumental,omitempty"`
}

// GenerateMusicResponse represents the response from music generation
type GenerateMusicResponse struct {
	TaskID string `json:"task_id"`
}

// Clip is one generated audio candidate belonging to a task
type Clip struct {
	ClipID    string          `json:"clip_id"`
	State     model.ClipState `json:"state"`
	Title     string          `json:"title,omitempty"`
	Duration  float64         `json:"duration,omitempty"`
	AudioURL  string          `json:"audio_url,omitempty"`
	VideoURL  string          `json:"video_url,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Lyrics    string          `json:"lyrics,omitempty"`
	Tags      string          `json:"tags,omitempty"`
	MV        string          `json:"mv,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// TaskStatusResponse carries all clips the provider has produced for a task
type TaskStatusResponse struct {
	Data []Clip `json:"data"`
}

// Partition splits clips by lifecycle state.
func (r *TaskStatusResponse) Partition() (succeeded, failed, inProgress []Clip) {
	for _, clip := range r.Data {
		switch clip.State {
		case model.ClipStateSucceeded:
			succeeded = append(succeeded, clip)
		case model.ClipStateFailed:
			failed = append(failed, clip)
		default:
			inProgress = append(inProgress, clip)
		}
	}
	return succeeded, failed, inProgress
}

// NewSunoClient creates a new provider API client
func NewSunoClient(cfg *config.SunoConfig) *SunoClient {
	return &SunoClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// SubmitGeneration submits a generation request and returns the task id
func (c *SunoClient) SubmitGeneration(ctx context.Context, req *GenerateMusicRequest) (*GenerateMusicResponse, error) {
	var result GenerateMusicResponse
	if err := c.post(ctx, "/v1/music/generate", req, &result); err != nil {
		return nil, err
	}
	if result.TaskID == "" {
		return nil, fmt.Errorf("provider returned empty task_id")
	}
	return &result, nil
}

// GetTask retrieves the current clip set for a generation task
func (c *SunoClient) GetTask(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	endpoint := fmt.Sprintf("/v1/music/task/%s", taskID)
	var result TaskStatusResponse
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post sends a POST request with JSON body
func (c *SunoClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *SunoClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *SunoClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[Suno API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Suno API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("suno API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		log.Printf("[Suno API] ✗ unmarshal error for %s %s: %v (body: %s)", req.Method, req.URL.String(), err, string(respBody))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SunoClient) IsConfigured() bool {
	return c.apiKey != ""
}
