package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneforge/api/internal/model"
)

func TestLyricsDraftMockFallback(t *testing.T) {
	svc := NewLyricsService(nil)

	resp, err := svc.Draft(context.Background(), &model.LyricsDraftRequest{Theme: "night driving"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Drafts)
	assert.Contains(t, resp.Drafts[0], "night driving")
}

func TestSplitDrafts(t *testing.T) {
	content := "[Verse]\nfirst draft\n---\n[Verse]\nsecond draft\n---\n[Verse]\nthird draft"
	drafts := splitDrafts(content)
	require.Len(t, drafts, 3)
	assert.Equal(t, "[Verse]\nfirst draft", drafts[0])
	assert.Equal(t, "[Verse]\nthird draft", drafts[2])
}

func TestSplitDraftsSingle(t *testing.T) {
	drafts := splitDrafts("[Verse]\nonly draft")
	require.Len(t, drafts, 1)
}
