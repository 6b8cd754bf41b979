package model

// LyricsDraftRequest asks the LLM for lyric drafts to feed a generation prompt
type LyricsDraftRequest struct {
	Theme string   `json:"theme" validate:"required,min=1,max=500"`
	Genre string   `json:"genre,omitempty" validate:"omitempty,max=40"`
	Vibes []string `json:"vibes,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// LyricsDraftResponse carries the generated drafts
type LyricsDraftResponse struct {
	Drafts []string `json:"drafts"`
}
