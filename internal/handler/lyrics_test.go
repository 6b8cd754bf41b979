package handler

import (
	"net/http"
	"testing"
)

func TestLyricsDraft_MockFallback(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"theme": "night driving",
		"genre": "synthwave",
		"vibes": ["nostalgic", "upbeat"]
	}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/lyrics/draft", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	drafts, ok := result["drafts"].([]interface{})
	if !ok || len(drafts) == 0 {
		t.Fatalf("expected non-empty drafts array, got %v", result["drafts"])
	}
}

func TestLyricsDraft_MissingTheme(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/lyrics/draft", `{"genre":"pop"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}
