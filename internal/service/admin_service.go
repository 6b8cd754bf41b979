package service

import (
	"context"
	"log"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

// AdminService backs the operator surface.
type AdminService struct {
	users store.UserStore
	tasks store.TaskStore
	songs *SongService
}

func NewAdminService(users store.UserStore, tasks store.TaskStore, songs *SongService) *AdminService {
	return &AdminService{users: users, tasks: tasks, songs: songs}
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AdminService) UpdateUserStatus(ctx context.Context, userID string, status model.UserStatus) error {
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	log.Printf("[Admin] user %s status set to %s", userID, status)
	return nil
}

func (s *AdminService) ListTasks(ctx context.Context, status model.TaskStatus, limit int) ([]*model.GenerationTask, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.tasks.ListByStatus(ctx, status, limit)
}

// DeleteSong removes any user's song, bypassing the ownership check.
func (s *AdminService) DeleteSong(ctx context.Context, id string) error {
	return s.songs.Delete(ctx, "", id)
}
