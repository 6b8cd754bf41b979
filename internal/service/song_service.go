package service

import (
	"context"
	"log"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

// SongService serves the user song library.
type SongService struct {
	songs   store.SongStore
	storage client.StorageClient
}

func NewSongService(songs store.SongStore, storage client.StorageClient) *SongService {
	return &SongService{songs: songs, storage: storage}
}

func (s *SongService) List(ctx context.Context, userID string, limit, offset int) ([]*model.Song, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.songs.ListByUser(ctx, userID, limit, offset)
}

func (s *SongService) Get(ctx context.Context, userID, id string) (*model.Song, error) {
	song, err := s.songs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if song.UserID != userID {
		return nil, store.ErrNotFound
	}
	return song, nil
}

// Delete removes a song owned by userID. An empty userID skips the
// ownership check; the admin surface uses that path. The archived copy in
// object storage is removed best-effort.
func (s *SongService) Delete(ctx context.Context, userID, id string) error {
	song, err := s.songs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if userID != "" && song.UserID != userID {
		return store.ErrNotFound
	}

	if err := s.songs.Delete(ctx, id, userID); err != nil {
		return err
	}

	if song.ArchivedURL != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, archiveKey(song)); err != nil {
			log.Printf("[Songs] failed to delete archived media for song %s: %v", id, err)
		}
	}
	return nil
}

func archiveKey(song *model.Song) string {
	return "songs/" + song.UserID + "/" + song.ID.Hex() + ".mp3"
}
