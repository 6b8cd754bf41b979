package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/pkg/response"
)

type LyricsHandler struct {
	lyrics    *service.LyricsService
	validator *validator.Validate
}

func NewLyricsHandler(lyrics *service.LyricsService, v *validator.Validate) *LyricsHandler {
	return &LyricsHandler{lyrics: lyrics, validator: v}
}

// Draft handles POST /api/lyrics/draft
// @Summary      Generate lyric drafts
// @Description  Generate alternative lyric drafts for a theme
// @Tags         Lyrics
// @Accept       json
// @Produce      json
// @Param        request body model.LyricsDraftRequest true "Draft request"
// @Success      200 {object} model.LyricsDraftResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/lyrics/draft [post]
func (h *LyricsHandler) Draft(c *fiber.Ctx) error {
	var req model.LyricsDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.lyrics.Draft(c.Context(), &req)
	if err != nil {
		return response.ProviderError(c, "Lyric drafting is temporarily unavailable")
	}
	return response.OK(c, result)
}
