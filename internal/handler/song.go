package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/middleware"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/internal/store"
	"github.com/tuneforge/api/pkg/response"
)

type SongHandler struct {
	songs *service.SongService
}

func NewSongHandler(songs *service.SongService) *SongHandler {
	return &SongHandler{songs: songs}
}

// List handles GET /api/songs
// @Summary      List songs
// @Description  List the caller's song library, newest first
// @Tags         Songs
// @Produce      json
// @Param        limit  query int false "Page size (max 100)"
// @Param        offset query int false "Page offset"
// @Success      200 {array} model.Song
// @Failure      401 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/songs [get]
func (h *SongHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	songs, err := h.songs.List(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, songs)
}

// Get handles GET /api/songs/:id
// @Summary      Get a song
// @Tags         Songs
// @Produce      json
// @Param        id path string true "Song ID"
// @Success      200 {object} model.Song
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/songs/{id} [get]
func (h *SongHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	song, err := h.songs.Get(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Song not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, song)
}

// Delete handles DELETE /api/songs/:id
// @Summary      Delete a song
// @Tags         Songs
// @Param        id path string true "Song ID"
// @Success      204 "No Content"
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/songs/{id} [delete]
func (h *SongHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.songs.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Song not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}
