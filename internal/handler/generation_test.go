package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
)

func TestGenerate_Success(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"prompt": "an upbeat synthwave track about night driving",
		"title": "Neon Drive",
		"tags": ["synthwave", "retro"]
	}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	if result["taskId"] != "task-1" {
		t.Errorf("expected taskId task-1, got %v", result["taskId"])
	}
	if result["status"] != "pending" {
		t.Errorf("expected status pending, got %v", result["status"])
	}

	task, err := ta.tasks.GetByTaskID(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("task not persisted: %v", err)
	}
	if task.UserID != testUserID {
		t.Errorf("task owner mismatch: %s", task.UserID)
	}
}

func TestGenerate_NoAuth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/generate/", `{"prompt":"x"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "UNAUTHORIZED" {
		t.Errorf("expected error code UNAUTHORIZED, got %v", errObj["code"])
	}
}

func TestGenerate_MissingPrompt(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/", `{"title":"No Prompt"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestGenerate_SuspendedUser(t *testing.T) {
	ta := setupApp(t)

	if _, err := ta.users.Ensure(context.Background(), testUserID, "test@example.com", ""); err != nil {
		t.Fatal(err)
	}
	if err := ta.users.UpdateStatus(context.Background(), testUserID, model.UserStatusSuspended); err != nil {
		t.Fatal(err)
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/", `{"prompt":"anything"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusForbidden)
}

func TestGenerate_ProviderDown(t *testing.T) {
	ta := setupApp(t)
	ta.provider.submitErr = errTest("provider down")

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/", `{"prompt":"anything"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadGateway)
}

type errTest string

func (e errTest) Error() string { return string(e) }

func seedTask(t *testing.T, ta *testApp, taskID, userID string) *model.GenerationTask {
	t.Helper()
	task := &model.GenerationTask{
		TaskID:          taskID,
		UserID:          userID,
		Prompt:          "an upbeat track",
		Model:           "chirp-v4",
		Status:          model.TaskStatusPending,
		MaxPollAttempts: 30,
		CreatedAt:       time.Now().Add(-time.Minute),
	}
	if err := ta.tasks.Create(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	return task
}

func TestStatus_PersistsSucceededClips(t *testing.T) {
	ta := setupApp(t)
	seedTask(t, ta, "task-1", testUserID)
	ta.provider.resp = &client.TaskStatusResponse{
		Data: []client.Clip{{
			ClipID:   "clip-a",
			State:    model.ClipStateSucceeded,
			Title:    "Neon Drive",
			AudioURL: "https://cdn.example.com/clip-a.mp3",
		}},
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/status/task-1", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	songs, ok := result["songs"].([]interface{})
	if !ok || len(songs) != 1 {
		t.Fatalf("expected 1 song in status response, got %v", result["songs"])
	}
	if ta.songs.Count() != 1 {
		t.Errorf("expected song persisted, count=%d", ta.songs.Count())
	}
}

func TestStatus_OtherUsersTaskHidden(t *testing.T) {
	ta := setupApp(t)
	seedTask(t, ta, "task-1", "someone-else")

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/status/task-1", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestStatus_UnknownTask(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/status/nope", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestPending_ListsOutstandingTasks(t *testing.T) {
	ta := setupApp(t)
	task := seedTask(t, ta, "task-1", testUserID)
	future := time.Now().Add(time.Minute)
	task.NextPollAt = &future
	if err := ta.tasks.Update(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/pending", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	tasks, ok := result["tasks"].([]interface{})
	if !ok {
		t.Fatalf("expected tasks array, got %v", result["tasks"])
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
}

func TestRecover_CompletesStuckTask(t *testing.T) {
	ta := setupApp(t)
	seedTask(t, ta, "task-1", testUserID)
	ta.provider.resp = &client.TaskStatusResponse{
		Data: []client.Clip{{
			ClipID:   "clip-a",
			State:    model.ClipStateSucceeded,
			AudioURL: "https://cdn.example.com/clip-a.mp3",
		}},
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/recover", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["success"] != true {
		t.Errorf("expected success true, got %v", result["success"])
	}
	if result["recoveredTasks"] != float64(1) {
		t.Errorf("expected 1 recovered task, got %v", result["recoveredTasks"])
	}
	if result["completedTasks"] != float64(1) {
		t.Errorf("expected 1 completed task, got %v", result["completedTasks"])
	}

	task, err := ta.tasks.GetByTaskID(context.Background(), "task-1")
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != model.TaskStatusCompleted {
		t.Errorf("expected completed, got %s", task.Status)
	}
}
