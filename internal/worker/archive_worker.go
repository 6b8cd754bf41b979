package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/store"
)

// TaskTypeArchive is the asynq task type for mirroring a song's audio into
// durable storage. Provider-hosted URLs expire, so every persisted song is
// archived shortly after creation.
const TaskTypeArchive = "song:archive"

type archivePayload struct {
	SongID string `json:"songId"`
}

// ArchiveWorker downloads a song's audio from the provider CDN and uploads
// it to object storage.
type ArchiveWorker struct {
	songs      store.SongStore
	storage    client.StorageClient
	httpClient *http.Client
}

// NewArchiveWorker creates a new archive worker
func NewArchiveWorker(songs store.SongStore, storage client.StorageClient) *ArchiveWorker {
	return &ArchiveWorker{
		songs:   songs,
		storage: storage,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// ProcessTask handles one archive job
func (w *ArchiveWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload archivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal archive payload: %w", err)
	}

	song, err := w.songs.GetByID(ctx, payload.SongID)
	if err != nil {
		if err == store.ErrNotFound {
			// Deleted before the job ran; nothing to do.
			return nil
		}
		return fmt.Errorf("failed to load song %s: %w", payload.SongID, err)
	}

	if song.ArchivedURL != "" {
		return nil
	}
	if song.AudioURL == "" {
		log.Printf("[Archive] song %s has no audio URL, skipping", payload.SongID)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, song.AudioURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download audio for song %s: %w", payload.SongID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("audio download for song %s returned status %d", payload.SongID, resp.StatusCode)
	}

	key := fmt.Sprintf("songs/%s/%s.mp3", song.UserID, song.ID.Hex())
	url, err := w.storage.Upload(ctx, key, resp.Body, "audio/mpeg")
	if err != nil {
		return fmt.Errorf("failed to upload song %s: %w", payload.SongID, err)
	}

	if err := w.songs.SetArchivedURL(ctx, payload.SongID, url); err != nil {
		return fmt.Errorf("failed to record archived URL for song %s: %w", payload.SongID, err)
	}

	log.Printf("[Archive] song %s archived to %s", payload.SongID, key)
	return nil
}

// ArchiveEnqueuer queues archive jobs for newly persisted songs.
type ArchiveEnqueuer struct {
	client *asynq.Client
}

// NewArchiveEnqueuer creates an enqueuer backed by the shared asynq client
func NewArchiveEnqueuer(asynqClient *asynq.Client) *ArchiveEnqueuer {
	return &ArchiveEnqueuer{client: asynqClient}
}

// EnqueueArchive queues an archive job for the given song
func (e *ArchiveEnqueuer) EnqueueArchive(ctx context.Context, songID string) error {
	payload, err := json.Marshal(archivePayload{SongID: songID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskTypeArchive, payload, asynq.MaxRetry(5), asynq.Timeout(5*time.Minute))
	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
