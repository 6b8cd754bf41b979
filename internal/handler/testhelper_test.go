package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/auth"
	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/middleware"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/internal/store/memory"
)

const (
	testJWTSecret  = "test-secret-for-handlers"
	testSweepToken = "test-sweep-token"
	testUserID     = "test-user-123"
)

// stubProvider is a configurable client.MusicGenerator for handler tests.
type stubProvider struct {
	mu         sync.Mutex
	nextTaskID string
	submitErr  error
	resp       *client.TaskStatusResponse
	getErr     error
}

func (p *stubProvider) SubmitGeneration(ctx context.Context, req *client.GenerateMusicRequest) (*client.GenerateMusicResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return nil, p.submitErr
	}
	taskID := p.nextTaskID
	if taskID == "" {
		taskID = "task-1"
	}
	return &client.GenerateMusicResponse{TaskID: taskID}, nil
}

func (p *stubProvider) GetTask(ctx context.Context, taskID string) (*client.TaskStatusResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	if p.resp != nil {
		return p.resp, nil
	}
	return &client.TaskStatusResponse{}, nil
}

// testApp wires handlers against in-memory stores and a stub provider.
// No Redis, Mongo or provider credentials are needed.
type testApp struct {
	app      *fiber.App
	provider *stubProvider
	tasks    *memory.TaskStore
	songs    *memory.SongStore
	users    *memory.UserStore
	personas *memory.PersonaStore
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	ta := &testApp{
		provider: &stubProvider{},
		tasks:    memory.NewTaskStore(),
		songs:    memory.NewSongStore(),
		users:    memory.NewUserStore(),
		personas: memory.NewPersonaStore(),
	}

	validate := validator.New()

	reconciler := service.NewReconciler(ta.provider, ta.tasks, ta.songs, ta.users, nil, nil)
	sweeper := service.NewSweeper(reconciler, ta.tasks, 10)
	generationService := service.NewGenerationService(ta.provider, ta.tasks, ta.users, ta.personas, ta.songs, reconciler, "chirp-v4")
	songService := service.NewSongService(ta.songs, nil)
	personaService := service.NewPersonaService(ta.personas)
	lyricsService := service.NewLyricsService(nil) // unconfigured → mock drafts
	adminService := service.NewAdminService(ta.users, ta.tasks, songService)

	generationHandler := NewGenerationHandler(generationService, sweeper, validate)
	sweepHandler := NewSweepHandler(sweeper, testSweepToken)
	songHandler := NewSongHandler(songService)
	personaHandler := NewPersonaHandler(personaService, validate)
	lyricsHandler := NewLyricsHandler(lyricsService, validate)
	adminHandler := NewAdminHandler(adminService, validate)

	authMiddleware := middleware.NewHMACAuthMiddleware(testJWTSecret)

	app := fiber.New()

	app.Post("/internal/tasks/sweep", sweepHandler.Sweep)

	api := app.Group("/api", authMiddleware.Authenticate())

	generate := api.Group("/generate")
	generate.Post("/", generationHandler.Generate)
	generate.Get("/status/:taskId", generationHandler.Status)
	generate.Get("/pending", generationHandler.Pending)
	generate.Post("/recover", generationHandler.Recover)

	lyrics := api.Group("/lyrics")
	lyrics.Post("/draft", lyricsHandler.Draft)

	songs := api.Group("/songs")
	songs.Get("/", songHandler.List)
	songs.Get("/:id", songHandler.Get)
	songs.Delete("/:id", songHandler.Delete)

	personas := api.Group("/personas")
	personas.Post("/", personaHandler.Create)
	personas.Get("/", personaHandler.List)
	personas.Get("/:id", personaHandler.Get)
	personas.Put("/:id", personaHandler.Update)
	personas.Delete("/:id", personaHandler.Delete)

	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/status", adminHandler.UpdateUserStatus)
	admin.Get("/tasks", adminHandler.ListTasks)
	admin.Delete("/songs/:id", adminHandler.DeleteSong)

	ta.app = app
	return ta
}

// generateToken creates an HMAC JWT for test requests.
func generateToken(t *testing.T, roles ...string) string {
	t.Helper()
	signed, err := auth.SignHMACToken(testJWTSecret, testUserID, "test@example.com", roles...)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest performs an HTTP request against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request as the default test user.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + generateToken(t),
	})
}

// doAdminRequest performs an authenticated request with the admin role.
func doAdminRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + generateToken(t, "admin"),
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses a response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// parseJSONArray parses a response body into a slice.
func parseJSONArray(t *testing.T, resp *http.Response) []interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result []interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
