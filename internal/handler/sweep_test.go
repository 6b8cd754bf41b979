package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
)

func TestSweep_RequiresToken(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)

	resp, err = doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", map[string]string{
		"X-Sweep-Token": "wrong",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestSweep_EmptyQueue(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", map[string]string{
		"X-Sweep-Token": testSweepToken,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["success"] != true {
		t.Errorf("expected success true, got %v", result["success"])
	}
	if result["polled"] != float64(0) {
		t.Errorf("expected 0 polled, got %v", result["polled"])
	}
}

func TestSweep_ReconcilesDueTasks(t *testing.T) {
	ta := setupApp(t)
	seedTask(t, ta, "task-1", testUserID)
	ta.provider.resp = &client.TaskStatusResponse{
		Data: []client.Clip{{
			ClipID:   "clip-a",
			State:    model.ClipStateSucceeded,
			AudioURL: "https://cdn.example.com/clip-a.mp3",
		}},
	}

	resp, err := doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", map[string]string{
		"X-Sweep-Token": testSweepToken,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["polled"] != float64(1) {
		t.Errorf("expected 1 polled, got %v", result["polled"])
	}
	if result["completed"] != float64(1) {
		t.Errorf("expected 1 completed, got %v", result["completed"])
	}
	if ta.songs.Count() != 1 {
		t.Errorf("expected 1 persisted song, got %d", ta.songs.Count())
	}
}

func TestSweep_RepeatRunIsIdempotent(t *testing.T) {
	ta := setupApp(t)
	seedTask(t, ta, "task-1", testUserID)
	ta.provider.resp = &client.TaskStatusResponse{
		Data: []client.Clip{{
			ClipID:   "clip-a",
			State:    model.ClipStateSucceeded,
			AudioURL: "https://cdn.example.com/clip-a.mp3",
		}},
	}

	headers := map[string]string{"X-Sweep-Token": testSweepToken}
	if _, err := doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", headers); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	resp, err := doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", headers)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["polled"] != float64(0) {
		t.Errorf("second sweep should find nothing due, polled=%v", result["polled"])
	}
	if ta.songs.Count() != 1 {
		t.Errorf("expected song count to stay 1, got %d", ta.songs.Count())
	}
}

func TestSweep_AbandonsOverageTask(t *testing.T) {
	ta := setupApp(t)
	task := seedTask(t, ta, "task-1", testUserID)
	task.CreatedAt = time.Now().Add(-25 * time.Minute)
	if err := ta.tasks.Update(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	resp, err := doRequest(ta.app, http.MethodPost, "/internal/tasks/sweep", "", map[string]string{
		"X-Sweep-Token": testSweepToken,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["failed"] != float64(1) {
		t.Errorf("expected 1 failed, got %v", result["failed"])
	}

	stored, err := ta.tasks.GetByTaskID(context.Background(), "task-1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.TaskStatusAbandoned {
		t.Errorf("expected abandoned, got %s", stored.Status)
	}
}
