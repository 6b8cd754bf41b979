package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/model"
)

const lyricsSystemPrompt = `You are a songwriter. Write complete song lyrics with [Verse], [Chorus] and [Bridge] section markers. Return exactly three alternative drafts separated by a line containing only "---". Do not add commentary.`

// LyricsService generates lyric drafts for the songwriting flow. When no
// Groq key is configured it falls back to a deterministic placeholder so
// the rest of the product keeps working in local development.
type LyricsService struct {
	groq *client.GroqClient
}

func NewLyricsService(groq *client.GroqClient) *LyricsService {
	return &LyricsService{groq: groq}
}

func (s *LyricsService) Draft(ctx context.Context, req *model.LyricsDraftRequest) (*model.LyricsDraftResponse, error) {
	if s.groq == nil || !s.groq.IsConfigured() {
		log.Printf("[Lyrics] Groq not configured, returning mock drafts")
		return &model.LyricsDraftResponse{Drafts: mockDrafts(req)}, nil
	}

	userPrompt := fmt.Sprintf("Theme: %s", req.Theme)
	if req.Genre != "" {
		userPrompt += fmt.Sprintf("\nGenre: %s", req.Genre)
	}
	if len(req.Vibes) > 0 {
		userPrompt += fmt.Sprintf("\nVibes: %s", strings.Join(req.Vibes, ", "))
	}

	content, err := s.groq.ChatCompletion(ctx, lyricsSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("lyrics generation failed: %w", err)
	}

	drafts := splitDrafts(content)
	if len(drafts) == 0 {
		return nil, fmt.Errorf("lyrics generation returned no usable drafts")
	}
	return &model.LyricsDraftResponse{Drafts: drafts}, nil
}

func splitDrafts(content string) []string {
	parts := strings.Split(content, "\n---")
	drafts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "---"))
		if p != "" {
			drafts = append(drafts, p)
		}
	}
	return drafts
}

func mockDrafts(req *model.LyricsDraftRequest) []string {
	theme := req.Theme
	if theme == "" {
		theme = "a new beginning"
	}
	draft := fmt.Sprintf("[Verse]\nThinking about %s tonight\nEvery line is still unwritten\n\n[Chorus]\nSing it out, sing about %s\nUntil the morning light", theme, theme)
	return []string{draft}
}
