package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tuneforge/api/internal/model"
)

func seedSong(t *testing.T, ta *testApp, clipID, userID string) *model.Song {
	t.Helper()
	song := &model.Song{
		ClipID:    clipID,
		TaskID:    "task-1",
		UserID:    userID,
		Title:     "Neon Drive",
		AudioURL:  "https://cdn.example.com/" + clipID + ".mp3",
		Status:    model.SongStatusCompleted,
		CreatedAt: time.Now(),
	}
	if err := ta.songs.Insert(context.Background(), song); err != nil {
		t.Fatal(err)
	}
	return song
}

func TestSongs_ListOwnOnly(t *testing.T) {
	ta := setupApp(t)
	seedSong(t, ta, "clip-a", testUserID)
	seedSong(t, ta, "clip-b", "someone-else")

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/songs/", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	songs := parseJSONArray(t, resp)
	if len(songs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(songs))
	}
}

func TestSongs_GetOwn(t *testing.T) {
	ta := setupApp(t)
	song := seedSong(t, ta, "clip-a", testUserID)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/songs/"+song.ID.Hex(), "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["clipId"] != "clip-a" {
		t.Errorf("expected clipId clip-a, got %v", result["clipId"])
	}
}

func TestSongs_GetForeignHidden(t *testing.T) {
	ta := setupApp(t)
	song := seedSong(t, ta, "clip-a", "someone-else")

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/songs/"+song.ID.Hex(), "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestSongs_DeleteOwn(t *testing.T) {
	ta := setupApp(t)
	song := seedSong(t, ta, "clip-a", testUserID)

	resp, err := doAuthRequest(t, ta.app, http.MethodDelete, "/api/songs/"+song.ID.Hex(), "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNoContent)

	if ta.songs.Count() != 0 {
		t.Errorf("expected song removed, count=%d", ta.songs.Count())
	}
}

func TestSongs_DeleteForeignRejected(t *testing.T) {
	ta := setupApp(t)
	song := seedSong(t, ta, "clip-a", "someone-else")

	resp, err := doAuthRequest(t, ta.app, http.MethodDelete, "/api/songs/"+song.ID.Hex(), "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)

	if ta.songs.Count() != 1 {
		t.Errorf("foreign song must survive, count=%d", ta.songs.Count())
	}
}
