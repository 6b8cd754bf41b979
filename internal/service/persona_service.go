package service

import (
	"context"
	"time"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/store"
)

// PersonaService manages a user's reusable voice personas.
type PersonaService struct {
	personas store.PersonaStore
}

func NewPersonaService(personas store.PersonaStore) *PersonaService {
	return &PersonaService{personas: personas}
}

func (s *PersonaService) Create(ctx context.Context, userID string, req *model.PersonaRequest) (*model.Persona, error) {
	now := time.Now()
	persona := &model.Persona{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		StyleTags:   req.StyleTags,
		VoicePrompt: req.VoicePrompt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.personas.Create(ctx, persona); err != nil {
		return nil, err
	}
	return persona, nil
}

func (s *PersonaService) Get(ctx context.Context, userID, id string) (*model.Persona, error) {
	return s.personas.GetByID(ctx, id, userID)
}

func (s *PersonaService) List(ctx context.Context, userID string) ([]*model.Persona, error) {
	return s.personas.ListByUser(ctx, userID)
}

func (s *PersonaService) Update(ctx context.Context, userID, id string, req *model.PersonaRequest) (*model.Persona, error) {
	persona, err := s.personas.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	persona.Name = req.Name
	persona.Description = req.Description
	persona.StyleTags = req.StyleTags
	persona.VoicePrompt = req.VoicePrompt
	persona.UpdatedAt = time.Now()

	if err := s.personas.Update(ctx, persona); err != nil {
		return nil, err
	}
	return persona, nil
}

func (s *PersonaService) Delete(ctx context.Context, userID, id string) error {
	return s.personas.Delete(ctx, id, userID)
}
