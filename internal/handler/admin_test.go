package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/tuneforge/api/internal/model"
)

func TestAdmin_RequiresAdminRole(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/admin/users", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "FORBIDDEN" {
		t.Errorf("expected error code FORBIDDEN, got %v", errObj["code"])
	}
}

func TestAdmin_ListUsers(t *testing.T) {
	ta := setupApp(t)
	if _, err := ta.users.Ensure(context.Background(), "user-a", "a@example.com", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := ta.users.Ensure(context.Background(), "user-b", "b@example.com", "B"); err != nil {
		t.Fatal(err)
	}

	resp, err := doAdminRequest(t, ta.app, http.MethodGet, "/api/admin/users", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	users := parseJSONArray(t, resp)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestAdmin_SuspendUser(t *testing.T) {
	ta := setupApp(t)
	if _, err := ta.users.Ensure(context.Background(), "user-a", "a@example.com", "A"); err != nil {
		t.Fatal(err)
	}

	resp, err := doAdminRequest(t, ta.app, http.MethodPut, "/api/admin/users/user-a/status", `{"status":"suspended"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	user, err := ta.users.Get(context.Background(), "user-a")
	if err != nil {
		t.Fatal(err)
	}
	if user.Status != model.UserStatusSuspended {
		t.Errorf("expected suspended, got %s", user.Status)
	}
}

func TestAdmin_SuspendUserInvalidStatus(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAdminRequest(t, ta.app, http.MethodPut, "/api/admin/users/user-a/status", `{"status":"banned"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestAdmin_ListTasksByStatus(t *testing.T) {
	ta := setupApp(t)
	seedTask(t, ta, "task-pending", testUserID)
	done := seedTask(t, ta, "task-done", testUserID)
	done.Status = model.TaskStatusCompleted
	if err := ta.tasks.Update(context.Background(), done); err != nil {
		t.Fatal(err)
	}

	resp, err := doAdminRequest(t, ta.app, http.MethodGet, "/api/admin/tasks?status=completed", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	tasks := parseJSONArray(t, resp)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 completed task, got %d", len(tasks))
	}
}

func TestAdmin_DeleteAnySong(t *testing.T) {
	ta := setupApp(t)
	song := seedSong(t, ta, "clip-a", "someone-else")

	resp, err := doAdminRequest(t, ta.app, http.MethodDelete, "/api/admin/songs/"+song.ID.Hex(), "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNoContent)

	if ta.songs.Count() != 0 {
		t.Errorf("expected song removed, count=%d", ta.songs.Count())
	}
}
